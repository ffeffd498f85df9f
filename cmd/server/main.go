// cmd/server/main.go
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

	"go.uber.org/zap"

	"voluntra-backend/internal/audit"
	"voluntra-backend/internal/catalog"
	"voluntra-backend/internal/common/auth"
	"voluntra-backend/internal/common/aws"
	"voluntra-backend/internal/common/config"
	"voluntra-backend/internal/common/database"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/common/observability"
	"voluntra-backend/internal/common/storage"
	"voluntra-backend/internal/dashboard"
	"voluntra-backend/internal/intake"
	"voluntra-backend/internal/notify"
	"voluntra-backend/internal/payments"
	"voluntra-backend/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting voluntra backend...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Firestore with retry ---
	var store *database.FirestoreClient
	err = retryWithBackoff(func() error {
		var err error
		store, err = database.NewFirestore(ctx, cfg.Firestore)
		return err
	}, 10, 2*time.Second, zapLog, "Firestore client initialization")
	if err != nil {
		zapLog.Fatal("firestore failed after retries", zap.Error(err))
	}
	defer store.Close()
	zapLog.Info("Firestore connected successfully")

	// --- Init Cloud Storage with retry ---
	var blobs *storage.GCSClient
	err = retryWithBackoff(func() error {
		var err error
		blobs, err = storage.NewGCS(ctx, cfg.Storage)
		return err
	}, 10, 2*time.Second, zapLog, "Cloud Storage client initialization")
	if err != nil {
		zapLog.Fatal("cloud storage failed after retries", zap.Error(err))
	}
	defer blobs.Close()
	zapLog.Info("Cloud Storage connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS messaging clients ---
	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SES client failed", zap.Error(err))
	}
	snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SNS client failed", zap.Error(err))
	}

	// --- Wire services ---
	var auditLog intake.AuditRecorder
	if cfg.Intake.AuditEnabled {
		auditLog = audit.NewLog(pg.DB, log)
	}

	gateway := intake.NewGateway(intake.GatewayConfig{
		Collection:     cfg.Intake.Collection,
		SubmitTimeout:  time.Duration(cfg.Intake.SubmitTimeout) * time.Millisecond,
		IdempotencyTTL: time.Duration(cfg.Intake.IdempotencyTTL) * time.Second,
	}, store, rdb, auditLog, log)

	verifier := auth.NewVerifier(cfg.Auth.ProviderURL, cfg.Auth.APIKey, time.Duration(cfg.Auth.Timeout)*time.Millisecond)
	notifier := notify.NewNotifier(cfg.Notifications, sesClient, snsClient, log)

	srv := server.New(server.Deps{
		Sessions:  intake.NewSessionManager(gateway, log),
		Catalog:   catalog.NewService(store, log),
		Dashboard: dashboard.NewService(store, blobs, log),
		Payments:  payments.NewService(cfg.Payments, log),
		Webhooks:  payments.NewWebhookProcessor(cfg.Payments.WebhookSecret, store, auditLog, log),
		Notifier:  notifier,
		Verifier:  verifier,
		Obs:       obs,
		Durations: cfg.Intake.DurationOptions,
		Health: map[string]server.HealthChecker{
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
		},
	}, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
