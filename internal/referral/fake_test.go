package referral

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"waitlist-referral/internal/database"
	"waitlist-referral/internal/models"
)

// memStore mimics the gorm store: unique email and code, atomic counters.
type memStore struct {
	mu        sync.Mutex
	users     []*models.User
	addresses map[string]int64
	creates   int

	failIncrement error
	failFind      error
	failCreate    error
}

func newMemStore() *memStore {
	return &memStore{addresses: make(map[string]int64)}
}

func (m *memStore) IncrementAddress(_ context.Context, address string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIncrement != nil {
		return 0, m.failIncrement
	}
	m.addresses[address]++
	return m.addresses[address], nil
}

func (m *memStore) count(address string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addresses[address]
}

func (m *memStore) FindUserByReferralCode(_ context.Context, code string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	for _, u := range m.users {
		if u.ReferralCode == code {
			found := *u
			if u.ReferredByID != nil {
				for _, r := range m.users {
					if r.ID == *u.ReferredByID {
						ref := *r
						found.ReferredBy = &ref
					}
				}
			}
			return &found, nil
		}
	}
	return nil, database.ErrRecordNotFound
}

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return database.ErrDuplicateEmail
		}
		if u.ReferralCode == user.ReferralCode {
			return database.ErrDuplicateReferralCode
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

func (m *memStore) CountUsersReferredBy(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if u.ReferredByID != nil && *u.ReferredByID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// scriptedCodes hands out the given codes in order.
type scriptedCodes struct {
	codes []string
	next  int
}

func (s *scriptedCodes) Generate() (string, error) {
	if s.next >= len(s.codes) {
		return "", errors.New("script exhausted")
	}
	c := s.codes[s.next]
	s.next++
	return c, nil
}
