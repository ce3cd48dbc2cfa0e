package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"waitlist-referral/internal/api"
	"waitlist-referral/internal/bot"
	"waitlist-referral/internal/config"
	"waitlist-referral/internal/database"
	"waitlist-referral/internal/logging"
	"waitlist-referral/internal/referral"
	"waitlist-referral/internal/rewards"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	logging.Setup("waitlist", cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := rewards.Load(cfg.RewardTiersFile)
	if err != nil {
		log.Fatalf("Could not load reward tiers: %v", err)
	}
	log.Printf("Loaded reward table %q with %d tiers", table.Version, len(table.Tiers))

	// Connect to Database
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	store := database.NewStore(db)

	var counter referral.AbuseCounter = store
	if cfg.AbuseCounter == config.CounterRedis {
		rdb, err := database.ConnectRedis(cfg)
		if err != nil {
			log.Fatalf("Could not connect to redis: %v", err)
		}
		defer rdb.Close()
		counter = database.NewRedisCounter(rdb)
	}

	svc := referral.New(referral.Config{
		Users:               store,
		Counter:             counter,
		Rewards:             table,
		BaseURL:             cfg.BaseURL,
		AbuseThreshold:      cfg.AbuseThreshold,
		LenientReferrals:    cfg.LenientReferrals(),
		RequireReferralCode: cfg.RequireReferralCode,
	})

	if cfg.BotToken != "" {
		tgBot, err := bot.NewBot(cfg.BotToken, svc)
		if err != nil {
			log.Fatalf("Could not create telegram bot: %v", err)
		}
		go func() {
			if err := tgBot.Start(ctx); err != nil {
				log.Printf("Telegram bot stopped: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.New(api.Config{Referrals: svc, CORSOrigins: cfg.CORSOrigins, TrustedProxies: cfg.TrustedProxies}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Waitlist API listening on %s (referral policy %s, abuse counter %s)", srv.Addr, cfg.ReferralPolicy, cfg.AbuseCounter)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Service stopped")
}
