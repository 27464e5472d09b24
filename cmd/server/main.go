package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appidentity "github.com/salesdesk/backend/internal/application/identity"
	importapp "github.com/salesdesk/backend/internal/application/import"
	prefapp "github.com/salesdesk/backend/internal/application/preference"
	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/infrastructure/auth"
	"github.com/salesdesk/backend/internal/infrastructure/cache"
	"github.com/salesdesk/backend/internal/infrastructure/config"
	"github.com/salesdesk/backend/internal/infrastructure/forwarding"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"github.com/salesdesk/backend/internal/infrastructure/persistence"
	"github.com/salesdesk/backend/internal/infrastructure/scheduler"
	"github.com/salesdesk/backend/internal/infrastructure/storage"
	"github.com/salesdesk/backend/internal/infrastructure/telemetry"
	"github.com/salesdesk/backend/internal/interfaces/http/handler"
	"github.com/salesdesk/backend/internal/interfaces/http/middleware"
	"github.com/salesdesk/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Salesdesk API
//	@version		1.0
//	@description	List views, bulk actions and spreadsheet import for tickets, accounts, projects, activities and inventory.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	slowQueryThreshold = 200 * time.Millisecond
	shutdownTimeout    = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting salesdesk",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: slowQueryThreshold,
			DBSystem:        cfg.Database.Driver,
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// postgres schemas are owned by cmd/migrate
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}

	caches := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	if err := caches.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := caches.Close(); err != nil {
			log.Error("Error closing Redis", zap.Error(err))
		}
	}()

	userRepo := persistence.NewGormUserRepository(db.DB)
	recordRepo := persistence.NewGormRecordRepository(db.DB).WithBatchSize(cfg.Import.BatchSize)
	historyRepo := persistence.NewGormImportHistoryRepository(db.DB)

	recordOpts := []recordapp.Option{}
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3AttachmentStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize attachment storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Attachment bucket check failed", zap.String("bucket", s3.GetBucket()), zap.Error(err))
		}
		recordOpts = append(recordOpts, recordapp.WithAttachmentStorage(s3))
	} else {
		log.Info("Attachment storage disabled, uploads will be rejected")
	}
	if cfg.Forward.Enabled {
		fwd, err := forwarding.NewHTTPForwarder(cfg.Forward)
		if err != nil {
			log.Fatal("Failed to initialize forwarder", zap.Error(err))
		}
		recordOpts = append(recordOpts, recordapp.WithForwarder(fwd))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	revocations := caches.RevocationList()

	recordService := recordapp.NewService(recordRepo, log, recordOpts...)
	bulkService := recordapp.NewBulkService(recordRepo, recordService, log)
	importService := importapp.NewService(recordService, historyRepo, importapp.Config{
		MaxFileSize: cfg.Import.MaxFileSize,
		MaxRows:     cfg.Import.MaxRows,
	}, log)
	exportService := importapp.NewExportService(recordService, log)
	historyService := importapp.NewImportHistoryService(historyRepo)
	authService := appidentity.NewAuthService(userRepo, jwtService, revocations, log)
	userService := appidentity.NewUserService(userRepo, log)
	prefService := prefapp.NewService(caches.PreferenceStore())

	if err := bootstrapAdmin(ctx, userRepo, userService, cfg.Bootstrap, log); err != nil {
		log.Fatal("Failed to create bootstrap administrator", zap.Error(err))
	}

	sweeper := startMaintenance(ctx, cfg, revocations, historyService, log)

	middleware.SetupValidator()

	engine := router.NewEngine(router.EngineConfig{
		Logger:      log,
		JWTService:  jwtService,
		Revocations: revocations,
		HTTP:        cfg.HTTP,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Security: securityConfig(cfg),
	}, router.Handlers{
		Health:      handler.NewHealthHandler(db),
		Auth:        handler.NewAuthHandler(authService),
		Records:     handler.NewRecordHandler(recordService),
		Bulk:        handler.NewBulkHandler(bulkService),
		Imports:     handler.NewImportHandler(recordService, importService, exportService, historyService, cfg.Import.MaxRows),
		Preferences: handler.NewPreferenceHandler(prefService),
		Users:       handler.NewUserHandler(userService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sweeper != nil {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			log.Warn("Maintenance scheduler did not stop cleanly", zap.Error(err))
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// startMaintenance schedules the background sweeps. The revocation list is
// only pruned when it lives in process; Redis expires keys on its own.
func startMaintenance(
	ctx context.Context,
	cfg *config.Config,
	revocations auth.RevocationList,
	history *importapp.ImportHistoryService,
	log *zap.Logger,
) *scheduler.Scheduler {
	if !cfg.Maintenance.Enabled {
		return nil
	}
	sweeper, err := scheduler.NewScheduler(scheduler.Config{Interval: cfg.Maintenance.Interval}, log)
	if err != nil {
		log.Warn("Maintenance scheduler disabled", zap.Error(err))
		return nil
	}
	if pruner, ok := revocations.(scheduler.RevocationPruner); ok {
		_ = sweeper.Register(scheduler.PruneRevocations(pruner, log))
	}
	_ = sweeper.Register(scheduler.FailStaleImports(history, cfg.Import.StaleAfter, log))

	if err := sweeper.Start(ctx); err != nil {
		log.Warn("Failed to start maintenance scheduler", zap.Error(err))
		return nil
	}
	return sweeper
}

func securityConfig(cfg *config.Config) middleware.SecurityConfig {
	sec := middleware.DefaultSecurityConfig()
	sec.HSTSEnabled = cfg.App.IsProduction()
	return sec
}

// bootstrapAdmin creates the first administrator when the user table is
// empty. Without a configured password it only logs a warning.
func bootstrapAdmin(
	ctx context.Context,
	users identity.UserRepository,
	svc *appidentity.UserService,
	cfg config.BootstrapConfig,
	log *zap.Logger,
) error {
	existing, err := users.FindAll(ctx, identity.UserFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	if cfg.AdminPassword == "" {
		log.Warn("No users exist and DESK_BOOTSTRAP_ADMIN_PASSWORD is unset; nobody can log in")
		return nil
	}
	_, err = svc.Create(ctx, nil, appidentity.CreateUserInput{
		Username:    cfg.AdminUsername,
		Password:    cfg.AdminPassword,
		DisplayName: "Administrator",
		ReferenceID: "AD-0001",
		Role:        string(identity.RoleSuperAdmin),
	})
	if err != nil {
		return err
	}
	log.Info("Bootstrap administrator created", zap.String("username", cfg.AdminUsername))
	return nil
}
