// api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"folio/api/analytics"
	"folio/api/config"
	"folio/api/database"
	"folio/api/handlers"
	"folio/api/logging"
	"folio/api/metrics"
	"folio/api/models"
	"folio/api/notify"
	"folio/api/ratelimit"
	"folio/api/store"
	"folio/api/utils"
)

func main() {
	// .env is optional; real deployments set FOLIO_* directly.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		log.Debugf("No .env file loaded: %v", envErr)
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// --- PostgreSQL (posts, messages, users) ---
	pg, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer pg.Close()

	checks := map[string]handlers.Pinger{"postgres": pg}

	// --- Event store (ClickHouse or in-memory) ---
	var events analytics.EventStore
	switch cfg.AnalyticsDriver {
	case config.DriverMemory:
		log.Warn("Using the in-memory event store; analytics are lost on restart")
		events = store.NewMemoryEventStore()
	default:
		ch, err := database.NewClickHouseDB(ctx, database.ClickHouseConfig{
			Addr:     cfg.ClickHouseAddr(),
			Database: cfg.ClickHouseDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		}, log)
		if err != nil {
			log.Fatalf("Failed to initialize ClickHouse database: %v", err)
		}
		defer ch.Close()
		checks["clickhouse"] = ch
		events = store.NewAnalyticsStore(ch.DB)
	}

	// --- Stores ---
	userStore := store.NewUserStore(pg.DB)
	blogStore := store.NewBlogStore(pg.DB)
	messageStore := store.NewMessageStore(pg.DB)

	if err := bootstrapAdmin(ctx, cfg, userStore, log); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// --- Services ---
	recorder := analytics.NewRecorder(events, m, log)
	engine := analytics.NewEngine(events)
	limiter := ratelimit.New(ratelimit.Config{
		Limit:    cfg.ContactRateLimit,
		Window:   cfg.ContactRateWindow,
		Capacity: cfg.RateLimitCapacity,
	})
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	var notifier notify.Notifier = notify.NopNotifier{Log: log}
	if cfg.ResendAPIKey != "" {
		notifier = notify.NewResendNotifier(cfg.ResendAPIKey, notify.EmailConfig{
			From:    cfg.EmailFrom,
			To:      cfg.EmailTo,
			SiteURL: cfg.SiteURL,
		}, log)
	} else {
		log.Warn("FOLIO_RESEND_API_KEY not set; contact notifications are disabled")
	}

	// --- Handlers ---
	handlers.RegisterValidators()
	a := &app{
		log:       log,
		metrics:   m,
		limiter:   limiter,
		tokens:    tokens,
		apiKey:    cfg.AdminAPIKey,
		corsOrig:  cfg.CORSOrigin,
		proxies:   cfg.TrustedProxyList(),
		analytics: handlers.NewAnalyticsHandlers(recorder, engine, log),
		blog:      handlers.NewBlogHandlers(blogStore, recorder, log),
		contact:   handlers.NewContactHandlers(messageStore, notifier, recorder, m, log),
		dashboard: handlers.NewDashboardHandlers(engine, messageStore, blogStore, log),
		auth:      handlers.NewAuthHandlers(userStore, tokens, cfg.CookieSecure, log),
		health:    handlers.NewHealthHandlers(checks, log),
	}

	router, err := a.router()
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Folio API server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Folio API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting.")
}

type adminUpserter interface {
	UpsertAdmin(ctx context.Context, email, name string, hashedPassword []byte) (*models.User, error)
}

// bootstrapAdmin creates or refreshes the admin account from config. It is
// a no-op unless both admin_email and admin_password are set.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, users adminUpserter, log logrus.FieldLogger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Info("admin_email/admin_password not set; skipping admin bootstrap")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	user, err := users.UpsertAdmin(ctx, cfg.AdminEmail, cfg.AdminName, hash)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("admin account ready")
	return nil
}
