package referral

import (
	"errors"
	"fmt"
)

var (
	ErrMissingReferralCode = errors.New("referral code is required")
	ErrRateLimitExceeded   = errors.New("too many sign-ups from this address")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrDuplicateEmail      = errors.New("email already exists in the waitlist")
	ErrUserNotFound        = errors.New("user not found")
	ErrStoreUnavailable    = errors.New("store unavailable")
)

// IsRetryable reports whether err may succeed if the same request is repeated.
// Only store failures qualify; every other kind is final for its input.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
