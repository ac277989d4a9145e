package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hackr_api/internal/api"
	"hackr_api/internal/api/middleware"
	"hackr_api/internal/app/service"
	"hackr_api/internal/app/worker"
	"hackr_api/internal/common/security"
	"hackr_api/internal/domain/repository"
	"hackr_api/internal/platform/config"
	"hackr_api/internal/platform/database"
	"hackr_api/internal/platform/mailer"
	"hackr_api/internal/platform/queue"
	"hackr_api/internal/platform/recon"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	slog.Info("configuration loaded", "port", cfg.APIPort)

	// 2. Initialize Database
	db, err := database.Connect(ctx, cfg.DBConnStr())
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// 3. Initialize Redis
	rdb, err := queue.ConnectRedis(ctx, queue.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer queue.CloseRedis(rdb)

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	logRepo := repository.NewPgAccessLogRepository(db)

	// 5. Initialize Services
	tokens := security.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTExpiration())
	authService := service.NewAuthService(userRepo, tokens)
	logService := service.NewLogService(logRepo)
	featureService := service.NewFeatureService(recon.NewClient(recon.Options{
		HunterBaseURL:         cfg.HunterBaseURL,
		HunterAPIKey:          cfg.HunterAPIKey,
		SecurityTrailsBaseURL: cfg.SecurityTrailsBaseURL,
		SecurityTrailsAPIKey:  cfg.SecurityTrailsAPIKey,
		SerpAPIBaseURL:        cfg.SerpAPIBaseURL,
		SerpAPIKey:            cfg.SerpAPIKey,
	}))
	mailService := service.NewMailService(mailer.NewSMTPMailer(mailer.Options{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}))
	simulationService := service.NewSimulationService(rdb, service.SimulationOptions{
		QueueName:            cfg.SimulationQueueName,
		MaxWorkers:           cfg.SimulationMaxWorkers,
		MaxRequestsPerWorker: cfg.SimulationMaxRequestsPerWorker,
	})

	// 6. Bootstrap the default admin
	if _, err := authService.EnsureDefaultAdmin(ctx, service.AdminSeed{
		Email:    cfg.DefaultAdminEmail,
		Password: cfg.DefaultAdminPassword,
	}); err != nil {
		return err
	}

	// 7. Start the simulation worker
	simulationWorker := worker.NewSimulationWorker(rdb, simulationService, worker.Options{
		QueueName:      cfg.SimulationQueueName,
		LockKey:        cfg.SimulationLockKey,
		LockTTL:        cfg.SimulationLockTTL(),
		RequestTimeout: cfg.SimulationRequestTimeout,
	})
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	var workerWG sync.WaitGroup
	workerWG.Add(1)
	go func() {
		defer workerWG.Done()
		simulationWorker.Start(workerCtx)
	}()

	// 8. Initialize Router & HTTP Server
	auditCfg := middleware.DefaultAuditConfig()
	auditCfg.WriteTimeout = cfg.AuditWriteTimeout
	audit := middleware.NewAuditLogger(logRepo, auditCfg)

	router := api.NewRouter(api.Deps{
		Tokens:            tokens,
		Users:             userRepo,
		Audit:             audit,
		AuthService:       authService,
		LogService:        logService,
		FeatureService:    featureService,
		SimulationService: simulationService,
		MailService:       mailService,
		SecureCookie:      cfg.CookieSecure,
		AuthRateLimit:     cfg.AuthRateLimit,
		AuthRateBurst:     cfg.AuthRateBurst,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// 9. Graceful Shutdown
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	slog.Info("shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if err := audit.Wait(shutdownCtx); err != nil {
		slog.Warn("pending access log writes abandoned", "error", err)
	}
	workerWG.Wait()

	slog.Info("server and worker stopped gracefully")
	return nil
}
