package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email        string     `gorm:"size:320;uniqueIndex;not null"`
	ReferralCode string     `gorm:"size:32;uniqueIndex;not null"`
	ReferralLink string     `gorm:"size:512;not null"`
	ReferredByID *uuid.UUID `gorm:"type:uuid;index"`
	ReferredBy   *User      `gorm:"foreignKey:ReferredByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
