package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"waitlist-referral/internal/referral"
	"waitlist-referral/internal/rewards"
)

// Referrals is the part of referral.Service the HTTP layer needs.
type Referrals interface {
	Submit(ctx context.Context, req referral.SignupRequest) (*referral.SignupResult, error)
	Info(ctx context.Context, code string) (*referral.Info, error)
	Rewards() rewards.Table
}

type Config struct {
	Referrals      Referrals
	CORSOrigins    []string
	TrustedProxies []string
}

// Server exposes the waitlist endpoints.
type Server struct {
	Referrals      Referrals
	TrustedProxies []string

	validate *validator.Validate
	router   http.Handler
	cors     []string
}

func New(cfg Config) *Server {
	srv := &Server{
		Referrals:      cfg.Referrals,
		TrustedProxies: cfg.TrustedProxies,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		cors:           cfg.CORSOrigins,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Handler exposes the configured HTTP router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if len(s.cors) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cors,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/join-waitlist", s.JoinWaitlist)
		api.Get("/referral-info", s.ReferralInfo)
		api.Get("/rewards", s.Rewards)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func errorJSON(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}
