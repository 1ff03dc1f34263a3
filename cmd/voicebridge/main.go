// Command voicebridge runs the call relay service: it answers inbound
// call webhooks, bridges each call's media stream to an AI realtime
// session, and delivers a post-call summary to the caller.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/technvi/voicebridge/internal/config"
	"github.com/technvi/voicebridge/internal/log"
	"github.com/technvi/voicebridge/pkg/calendar"
	"github.com/technvi/voicebridge/pkg/dispatch"
	"github.com/technvi/voicebridge/pkg/directory"
	"github.com/technvi/voicebridge/pkg/gemini"
	"github.com/technvi/voicebridge/pkg/notify"
	"github.com/technvi/voicebridge/pkg/search"
	"github.com/technvi/voicebridge/pkg/session"
	"github.com/technvi/voicebridge/pkg/summary"
	"github.com/technvi/voicebridge/pkg/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	log.Info("starting voicebridge")

	ctx := context.Background()

	// Caller directory. Without a database the service still relays
	// calls, treating every caller as new.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	} else {
		log.Warn("DATABASE_URL not set, caller directory disabled")
	}
	dir := directory.NewPostgres(pool)

	// Product search.
	llm := gemini.New(cfg.GoogleAPIKey)
	searcher := search.New(llm, search.NewPinecone(cfg.PineconeAPIKey, cfg.PineconeIndexHost, cfg.PineconeNamespace))

	// Scheduling.
	var scheduler calendar.Scheduler
	scheduler, err = calendar.NewGoogle(ctx, cfg.GoogleCredentialsFile, cfg.CalendarID)
	if err != nil {
		log.Warn("calendar not configured, bookings disabled", "error", err)
		scheduler = calendar.Unconfigured{}
	}

	// Post-call summary delivery.
	pipeline := notify.NewPipeline(
		llm,
		notify.NewStorage(cfg.StorageURL, cfg.StorageServiceKey),
		notify.NewCleanURI(),
		notify.NewPlivo(cfg.PlivoAuthID, cfg.PlivoAuthToken, cfg.WhatsAppNumber),
	)

	store := session.NewStore()

	srv := web.NewServer(web.Options{
		Port:         cfg.Port,
		Store:        store,
		Directory:    dir,
		Dispatcher:   dispatch.New(searcher, scheduler),
		PostCall:     summary.New(store, pipeline),
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	})

	if err := srv.Start(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
