package runtime

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/markprompt/markprompt-core/internal/adapters/driven/auth"
	"github.com/markprompt/markprompt-core/internal/adapters/driven/connectors/gateway"
	"github.com/markprompt/markprompt-core/internal/adapters/driven/notify"
	"github.com/markprompt/markprompt-core/internal/adapters/driven/postgres"
	postgresqueue "github.com/markprompt/markprompt-core/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/markprompt/markprompt-core/internal/adapters/driven/queue/redis"
	redisadapter "github.com/markprompt/markprompt-core/internal/adapters/driven/redis"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
	"github.com/markprompt/markprompt-core/internal/core/ports/driving"
	"github.com/markprompt/markprompt-core/internal/core/services"
	"github.com/markprompt/markprompt-core/internal/ingest"
	"github.com/markprompt/markprompt-core/internal/worker"
)

// Config holds everything needed to assemble the application.
type Config struct {
	DatabaseURL string
	RedisURL    string // empty disables Redis; queue and lock fall back to Postgres

	GatewayURL    string
	GatewayAPIKey string

	JWTSecret string

	// TokenEncryptionKey is the hex-encoded 32-byte AES key protecting
	// stored API token values
	TokenEncryptionKey string

	WorkerConcurrency    int
	WorkerDequeueTimeout int

	Logger *slog.Logger
}

// Container wires adapters and services together. Built once at
// startup; Close tears the infrastructure down in reverse order.
type Container struct {
	DB          *postgres.DB
	RedisClient *redis.Client // nil when Redis is not configured

	TaskQueue driven.TaskQueue
	Lock      driven.DistributedLock
	Connector driven.ConnectorClient
	Pipeline  driven.FilePipeline
	Notifier  driven.Notifier

	AuthService   driving.AuthService
	SourceService driving.SourceService
	FileService   driving.FileService
	UsageService  driving.UsageService
	SyncService   driving.SyncService
	TokenService  driving.TokenService

	Worker *worker.Worker

	logger *slog.Logger
}

// Build connects to the backing stores and wires the full service
// graph.
func Build(ctx context.Context, cfg Config) (*Container, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("parsing redis URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
	}

	key, err := hex.DecodeString(cfg.TokenEncryptionKey)
	if err != nil {
		closeInfra(db, redisClient)
		return nil, fmt.Errorf("decoding token encryption key: %w", err)
	}
	encryptor, err := postgres.NewSecretEncryptor(key)
	if err != nil {
		closeInfra(db, redisClient)
		return nil, fmt.Errorf("creating token encryptor: %w", err)
	}

	sourceStore := postgres.NewSourceStore(db)
	fileStore := postgres.NewFileStore(db)
	syncQueueStore := postgres.NewSyncQueueStore(db)
	tokenStore := postgres.NewTokenStore(db, encryptor)
	projectStore := postgres.NewProjectStore(db)
	userStore := postgres.NewUserStore(db)

	var taskQueue driven.TaskQueue
	var lock driven.DistributedLock
	if redisClient != nil {
		taskQueue, err = redisqueue.NewWithClient(ctx, redisClient, logger)
		if err != nil {
			closeInfra(db, redisClient)
			return nil, fmt.Errorf("creating redis task queue: %w", err)
		}
		lock = redisadapter.NewLock(redisClient)
		logger.Info("using redis task queue and lock")
	} else {
		taskQueue = postgresqueue.NewQueue(db.DB)
		lock = postgres.NewAdvisoryLock(db)
		logger.Info("using postgres task queue and advisory lock")
	}

	connector := gateway.NewClient(cfg.GatewayURL, cfg.GatewayAPIKey)
	authAdapter := auth.NewAdapter(cfg.JWTSecret)
	pipeline := ingest.DefaultPipeline()
	notifier := notify.NewLogNotifier(logger)

	runner := services.NewSyncRunner(services.SyncRunnerConfig{
		SourceStore:    sourceStore,
		FileStore:      fileStore,
		SyncQueueStore: syncQueueStore,
		Connector:      connector,
		Lock:           lock,
		Pipeline:       pipeline,
		Logger:         logger,
	})

	c := &Container{
		DB:          db,
		RedisClient: redisClient,
		TaskQueue:   taskQueue,
		Lock:        lock,
		Connector:   connector,
		Pipeline:    pipeline,
		Notifier:    notifier,

		AuthService:   services.NewAuthService(userStore, authAdapter),
		SourceService: services.NewSourceService(sourceStore, fileStore, syncQueueStore, connector),
		FileService:   services.NewFileService(fileStore),
		UsageService:  services.NewUsageService(fileStore, projectStore),
		SyncService:   services.NewSyncService(syncQueueStore, taskQueue, logger),
		TokenService:  services.NewTokenService(tokenStore),

		Worker: worker.New(worker.Config{
			TaskQueue:      taskQueue,
			Runner:         runner,
			SourceStore:    sourceStore,
			SyncQueueStore: syncQueueStore,
			Logger:         logger,
			Concurrency:    cfg.WorkerConcurrency,
			DequeueTimeout: cfg.WorkerDequeueTimeout,
		}),

		logger: logger,
	}
	return c, nil
}

// NewWizardSession creates an onboarding wizard session for a project.
// Each dashboard dialog gets its own session.
func (c *Container) NewWizardSession(projectID string, onClose func()) *services.WizardSession {
	return services.NewWizardSession(services.WizardConfig{
		ProjectID: projectID,
		Sources:   c.SourceService,
		Sync:      c.SyncService,
		Connector: c.Connector,
		Notifier:  c.Notifier,
		Logger:    c.logger,
		OnClose:   onClose,
	})
}

// NewBrowserSession creates a file browser session over a project's
// file index.
func (c *Container) NewBrowserSession(projectID, teamID string) *services.BrowserSession {
	return services.NewBrowserSession(services.BrowserConfig{
		ProjectID: projectID,
		TeamID:    teamID,
		Files:     c.FileService,
		Sources:   c.SourceService,
		Syncs:     c.SyncService,
		Usage:     c.UsageService,
		Notifier:  c.Notifier,
		Logger:    c.logger,
	})
}

// Close releases the container's infrastructure. The redis queue owns
// the redis client and closes it.
func (c *Container) Close() error {
	if err := c.TaskQueue.Close(); err != nil {
		c.logger.Warn("closing task queue", "error", err)
	}
	return c.DB.Close()
}

func closeInfra(db *postgres.DB, redisClient *redis.Client) {
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
