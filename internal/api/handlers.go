package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"waitlist-referral/internal/referral"
	"waitlist-referral/internal/utils"
)

type joinRequest struct {
	Email        string `json:"email" validate:"required,email,max=320"`
	ReferralCode string `json:"referralCode"`
}

// JoinWaitlist handles POST /api/join-waitlist.
func (s *Server) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid_payload", "invalid payload")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.ReferralCode = strings.TrimSpace(req.ReferralCode)

	if err := s.validate.Struct(req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid_email", "a valid email address is required")
		return
	}

	res, err := s.Referrals.Submit(r.Context(), referral.SignupRequest{
		Email:         req.Email,
		ReferralCode:  req.ReferralCode,
		SourceAddress: utils.TrustedClientIP(r, s.TrustedProxies),
	})
	if err != nil {
		writeReferralError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ReferralInfo handles GET /api/referral-info?code=.
func (s *Server) ReferralInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.Referrals.Info(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeReferralError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Rewards handles GET /api/rewards.
func (s *Server) Rewards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Referrals.Rewards())
}

func writeReferralError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, referral.ErrMissingReferralCode):
		errorJSON(w, http.StatusBadRequest, "missing_referral_code", err.Error())
	case errors.Is(err, referral.ErrInvalidReferralCode):
		errorJSON(w, http.StatusBadRequest, "invalid_referral_code", err.Error())
	case errors.Is(err, referral.ErrRateLimitExceeded):
		errorJSON(w, http.StatusForbidden, "rate_limited", "Too many sign-ups from this IP address")
	case errors.Is(err, referral.ErrDuplicateEmail):
		errorJSON(w, http.StatusConflict, "duplicate_email", err.Error())
	case errors.Is(err, referral.ErrUserNotFound):
		errorJSON(w, http.StatusNotFound, "user_not_found", err.Error())
	case referral.IsRetryable(err):
		log.Printf("Store error: %v", err)
		w.Header().Set("Retry-After", "1")
		errorJSON(w, http.StatusServiceUnavailable, "store_unavailable", "service temporarily unavailable")
	default:
		log.Printf("Unexpected error: %v", err)
		errorJSON(w, http.StatusInternalServerError, "internal", "an unexpected error occurred")
	}
}
