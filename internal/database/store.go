package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"waitlist-referral/internal/models"
)

var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrDuplicateEmail        = errors.New("duplicate email")
	ErrDuplicateReferralCode = errors.New("duplicate referral code")
)

const uniqueViolation = "23505"

// Store persists users and per-address attempt counters in Postgres.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// IncrementAddress upserts the counter row for address and returns the count
// after the increment. The row stays locked until the transaction commits, so
// concurrent attempts from one address observe distinct counts.
func (s *Store) IncrementAddress(ctx context.Context, address string) (int64, error) {
	var rec models.IPAddress
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		row := models.IPAddress{Address: address, Count: 1, CreatedAt: now, UpdatedAt: now}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "address"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":      gorm.Expr("ip_addresses.count + 1"),
				"updated_at": now,
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Where("address = ?", address).First(&rec).Error
	})
	if err != nil {
		return 0, fmt.Errorf("increment address %s: %w", address, err)
	}
	return rec.Count, nil
}

// AddressCount returns the recorded attempts for address, zero when unseen.
func (s *Store) AddressCount(ctx context.Context, address string) (int64, error) {
	var rec models.IPAddress
	err := s.DB.WithContext(ctx).Where("address = ?", address).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read address %s: %w", address, err)
	}
	return rec.Count, nil
}

// FindUserByReferralCode loads the user owning code together with its referrer.
func (s *Store) FindUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Preload("ReferredBy").Where("referral_code = ?", code).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by referral code: %w", err)
	}
	return &user, nil
}

// CreateUser inserts user, assigning an ID when missing. Unique index
// violations are reported as ErrDuplicateEmail or ErrDuplicateReferralCode.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	db := s.DB.WithContext(ctx)
	err := db.Omit("ReferredBy").Create(user).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("create user: %w", err)
	}

	if pgErr := asPgError(err); pgErr != nil && pgErr.ConstraintName != "" {
		if strings.Contains(pgErr.ConstraintName, "email") {
			return ErrDuplicateEmail
		}
		if strings.Contains(pgErr.ConstraintName, "referral_code") {
			return ErrDuplicateReferralCode
		}
	}

	// The insert already failed; this only decides which index rejected it.
	var taken int64
	if cerr := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&taken).Error; cerr != nil {
		return fmt.Errorf("create user: %w", errors.Join(err, cerr))
	}
	if taken > 0 {
		return ErrDuplicateEmail
	}
	return ErrDuplicateReferralCode
}

func (s *Store) CountUsersReferredBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).Where("referred_by_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count referrals: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if pgErr := asPgError(err); pgErr != nil {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func asPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}
