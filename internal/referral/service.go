package referral

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"waitlist-referral/internal/database"
	"waitlist-referral/internal/models"
	"waitlist-referral/internal/rewards"
)

const (
	DefaultAbuseThreshold  = 3
	DefaultMaxCodeAttempts = 8
)

// AbuseCounter atomically increments the attempt counter of an address and
// returns the new value.
type AbuseCounter interface {
	IncrementAddress(ctx context.Context, address string) (int64, error)
}

// UserStore is the user half of the data store. Lookups report
// database.ErrRecordNotFound for unknown codes; CreateUser reports
// database.ErrDuplicateEmail and database.ErrDuplicateReferralCode.
type UserStore interface {
	FindUserByReferralCode(ctx context.Context, code string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	CountUsersReferredBy(ctx context.Context, userID uuid.UUID) (int64, error)
}

type CodeGenerator interface {
	Generate() (string, error)
}

type Config struct {
	Users   UserStore
	Counter AbuseCounter
	Codes   CodeGenerator
	Rewards rewards.Table
	BaseURL string
	// AbuseThreshold blocks the attempt whose post-increment count reaches it.
	AbuseThreshold int64
	// LenientReferrals ignores unknown referral codes instead of rejecting them.
	LenientReferrals    bool
	RequireReferralCode bool
	MaxCodeAttempts     int
}

// Service runs waitlist signups and referral progress queries.
type Service struct {
	users               UserStore
	counter             AbuseCounter
	codes               CodeGenerator
	rewards             rewards.Table
	baseURL             string
	abuseThreshold      int64
	lenient             bool
	requireReferralCode bool
	maxCodeAttempts     int
}

func New(cfg Config) *Service {
	if cfg.Codes == nil {
		cfg.Codes = NewGenerator(DefaultCodeLength)
	}
	if cfg.AbuseThreshold <= 0 {
		cfg.AbuseThreshold = DefaultAbuseThreshold
	}
	if cfg.MaxCodeAttempts <= 0 {
		cfg.MaxCodeAttempts = DefaultMaxCodeAttempts
	}
	return &Service{
		users:               cfg.Users,
		counter:             cfg.Counter,
		codes:               cfg.Codes,
		rewards:             cfg.Rewards,
		baseURL:             strings.TrimRight(cfg.BaseURL, "/"),
		abuseThreshold:      cfg.AbuseThreshold,
		lenient:             cfg.LenientReferrals,
		requireReferralCode: cfg.RequireReferralCode,
		maxCodeAttempts:     cfg.MaxCodeAttempts,
	}
}

// Rewards returns the tier table used for referral info.
func (s *Service) Rewards() rewards.Table {
	return s.rewards
}

type SignupRequest struct {
	Email         string
	ReferralCode  string
	SourceAddress string
}

type SignupResult struct {
	ReferralCode string `json:"referralCode"`
	ReferralLink string `json:"referralLink"`
}

// Submit registers a waitlist signup. Every call that passes request
// validation counts against SourceAddress, including calls that later fail.
func (s *Service) Submit(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(req.ReferralCode)

	if code == "" && s.requireReferralCode {
		return nil, ErrMissingReferralCode
	}

	count, err := s.counter.IncrementAddress(ctx, req.SourceAddress)
	if err != nil {
		return nil, storeError("increment address", err)
	}
	if count >= s.abuseThreshold {
		log.Printf("Signup blocked for %s after %d attempts", req.SourceAddress, count)
		return nil, ErrRateLimitExceeded
	}

	var referrerID *uuid.UUID
	if code != "" {
		referrer, err := s.users.FindUserByReferralCode(ctx, code)
		switch {
		case err == nil:
			id := referrer.ID
			referrerID = &id
		case errors.Is(err, database.ErrRecordNotFound):
			if !s.lenient {
				return nil, ErrInvalidReferralCode
			}
			log.Printf("Ignoring unknown referral code %q", code)
		default:
			return nil, storeError("find referrer", err)
		}
	}

	for attempt := 1; attempt <= s.maxCodeAttempts; attempt++ {
		newCode, err := s.codes.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate referral code: %w", err)
		}

		user := &models.User{
			Email:        email,
			ReferralCode: newCode,
			ReferralLink: ReferralLink(s.baseURL, newCode),
			ReferredByID: referrerID,
		}
		err = s.users.CreateUser(ctx, user)
		switch {
		case err == nil:
			if referrerID != nil {
				log.Printf("User %s joined via referral code %s", user.ID, code)
			} else {
				log.Printf("User %s joined the waitlist", user.ID)
			}
			return &SignupResult{ReferralCode: user.ReferralCode, ReferralLink: user.ReferralLink}, nil
		case errors.Is(err, database.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		case errors.Is(err, database.ErrDuplicateReferralCode):
			log.Printf("Referral code collision on attempt %d, regenerating", attempt)
			continue
		default:
			return nil, storeError("create user", err)
		}
	}

	return nil, storeError("create user", fmt.Errorf("no unique referral code after %d attempts", s.maxCodeAttempts))
}

type Info struct {
	ReferralCode    string         `json:"referralCode"`
	ReferralCount   int64          `json:"referralCount"`
	ReferredByEmail *string        `json:"referredByEmail"`
	ReferralLink    string         `json:"referralLink"`
	RewardsInfo     []rewards.Tier `json:"rewardsInfo"`
	RewardsVersion  string         `json:"rewardsVersion,omitempty"`
	Rewards         rewards.Result `json:"rewards"`
	ShareLinks      ShareLinks     `json:"shareLinks"`
}

// Info reports referral progress for the user owning code.
func (s *Service) Info(ctx context.Context, code string) (*Info, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingReferralCode
	}

	user, err := s.users.FindUserByReferralCode(ctx, code)
	if errors.Is(err, database.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, storeError("find user", err)
	}

	count, err := s.users.CountUsersReferredBy(ctx, user.ID)
	if err != nil {
		return nil, storeError("count referrals", err)
	}

	info := &Info{
		ReferralCode:   user.ReferralCode,
		ReferralCount:  count,
		ReferralLink:   user.ReferralLink,
		RewardsInfo:    s.rewards.Tiers,
		RewardsVersion: s.rewards.Version,
		Rewards:        s.rewards.Evaluate(count),
		ShareLinks:     NewShareLinks(user.ReferralLink),
	}
	if info.RewardsInfo == nil {
		info.RewardsInfo = []rewards.Tier{}
	}
	if user.ReferredBy != nil {
		email := user.ReferredBy.Email
		info.ReferredByEmail = &email
	}
	return info, nil
}

// ReferralLink appends the ref query parameter to baseURL.
func ReferralLink(baseURL, code string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "?ref=" + url.QueryEscape(code)
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String()
}

type ShareLinks struct {
	X        string `json:"x"`
	Facebook string `json:"facebook"`
	LinkedIn string `json:"linkedin"`
}

const shareText = "Join me on the waitlist for this amazing product! "

func NewShareLinks(link string) ShareLinks {
	return ShareLinks{
		X:        "https://x.com/intent/post?text=" + url.QueryEscape(shareText+link),
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(link),
		LinkedIn: "https://www.linkedin.com/sharing/share-offsite/?url=" + url.QueryEscape(link),
	}
}
