package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"charterhub/charter-api/internal/config"
	charterdomain "charterhub/charter-api/internal/domain/charter"
	draftdomain "charterhub/charter-api/internal/domain/draft"
	mediadomain "charterhub/charter-api/internal/domain/media"
	"charterhub/charter-api/internal/infrastructure/auth"
	"charterhub/charter-api/internal/infrastructure/database"
	"charterhub/charter-api/internal/infrastructure/database/transaction"
	"charterhub/charter-api/internal/infrastructure/logger"
	"charterhub/charter-api/internal/infrastructure/observability"
	charterrepo "charterhub/charter-api/internal/infrastructure/repository/charter"
	draftrepo "charterhub/charter-api/internal/infrastructure/repository/draft"
	mediarepo "charterhub/charter-api/internal/infrastructure/repository/media"
	"charterhub/charter-api/internal/infrastructure/storage"
	"charterhub/charter-api/internal/infrastructure/transcoder"
	"charterhub/charter-api/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HTTPServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

// dbReadiness answers /readyz with a connection ping.
type dbReadiness struct {
	db *gorm.DB
}

func (r dbReadiness) Ready(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.GetDatabaseWriteDSN(),
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	txDB := transaction.NewDatabase(db)

	var storageClient mediadomain.Storage
	if cfg.IsLocalStorage() {
		storageClient, err = storage.NewLocalStorage(cfg, log)
	} else {
		storageClient, err = storage.NewS3Storage(ctx, cfg, log)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	draftRepository := draftrepo.NewRepository(txDB)
	mediaRepository := mediarepo.NewRepository(txDB)
	charterRepository := charterrepo.NewRepository(txDB)

	linker := mediadomain.NewLinker(mediaRepository, log)
	engine := transcoder.NewEngineClient(cfg, log)
	publisher := transcoder.NewQueuePublisher(cfg, log)
	processor := mediadomain.NewProcessor(mediaRepository, storageClient, engine, linker, log)
	dispatcher := mediadomain.NewDispatcher(mediaRepository, publisher, processor, mediadomain.DispatcherConfig{
		QueueTimeout:  cfg.DispatchTimeout,
		DirectTimeout: cfg.TranscodeTimeout,
	}, log)

	draftService := draftdomain.NewService(draftRepository, log)
	mediaService := mediadomain.NewService(cfg, mediaRepository, storageClient, dispatcher, linker, log)
	finalizeService := charterdomain.NewService(cfg, draftService, draftRepository, charterRepository, txDB, linker, log)

	httpServer := httpserver.New(cfg, log, draftService, finalizeService, mediaService, processor, authValidator, dbReadiness{db: db})
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
