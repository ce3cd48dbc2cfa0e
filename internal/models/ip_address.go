package models

import (
	"time"
)

// IPAddress counts signup attempts per originating address.
type IPAddress struct {
	Address   string `gorm:"primaryKey;size:255"`
	Count     int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (IPAddress) TableName() string { return "ip_addresses" }
