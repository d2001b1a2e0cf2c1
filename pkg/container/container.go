package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"datahub-backend/internal/config"
	datasetHandler "datahub-backend/internal/domains/dataset/handler"
	"datahub-backend/internal/domains/dataset/model"
	datasetRepo "datahub-backend/internal/domains/dataset/repository"
	datasetService "datahub-backend/internal/domains/dataset/service"
	userRepo "datahub-backend/internal/domains/user/repository"
	infraCache "datahub-backend/internal/infrastructure/cache"
	"datahub-backend/internal/infrastructure/database"
	"datahub-backend/internal/infrastructure/queue"
	"datahub-backend/internal/infrastructure/storage"
	"datahub-backend/pkg/cache"
	"datahub-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the dependency graph of the API process.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Redis       *infraCache.RedisCache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client
	Local       *storage.LocalStorage
	MinIO       *storage.MinIOStorage

	// Repositories
	UserRepo userRepo.RepositoryInterface
	Repos    datasetService.Repositories
	DOIRepo  datasetRepo.DOIMappingRepository

	// Services
	DataSetService    datasetService.DataSetService
	DSMetaDataService datasetService.DSMetaDataService
	DOIService        datasetService.DOIMappingService
	HubfileService    datasetService.HubfileService

	// Handlers
	DataSetHandler *datasetHandler.Handler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer builds config, infrastructure, repositories, services and
// handlers, in that order.
func NewContainer() (*Container, error) {
	log.Info().Msg("Initializing DI container")

	c := &Container{}

	// STEP 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// STEP 2: database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.Pool); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// STEP 3: cache + queue. Redis is optional; the API degrades to no cache
	// and inline export cleanup.
	c.initRedis(ctx)

	// STEP 4: storage
	c.Local = storage.NewLocalStorage(cfg.App.WorkingDir)
	if cfg.MinIO.Enabled {
		minioStorage, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			log.Warn().Err(err).Msg("MinIO unavailable, archive mirroring disabled")
		} else {
			c.MinIO = minioStorage
		}
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Str("env", cfg.App.Environment).Msg("DI container ready")
	return c, nil
}

func (c *Container) initRedis(ctx context.Context) {
	c.Cache = cache.Noop{}

	redisCache := infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, continuing without cache and queue")
		_ = redisCache.Close()
		return
	}

	c.Redis = redisCache
	c.Cache = redisCache
	c.AsynqClient = asynq.NewClient(c.RedisClientOpt())
}

// RedisClientOpt is the asynq connection built from the Redis config.
func (c *Container) RedisClientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.Repos = datasetService.Repositories{
		DataSets:      datasetRepo.NewPostgresDataSetRepository(pool),
		DSMetaData:    datasetRepo.NewPostgresDSMetaDataRepository(pool),
		FMMetaData:    datasetRepo.NewPostgresFMMetaDataRepository(pool),
		Authors:       datasetRepo.NewPostgresAuthorRepository(pool),
		FeatureModels: datasetRepo.NewPostgresFeatureModelRepository(pool),
		Hubfiles:      datasetRepo.NewPostgresHubfileRepository(pool),
		Downloads:     datasetRepo.NewPostgresRecordRepository(pool, model.DatasetDownloadRecords),
		Views:         datasetRepo.NewPostgresRecordRepository(pool, model.DatasetViewRecords),
	}
	c.DOIRepo = datasetRepo.NewPostgresDOIMappingRepository(pool)
}

func (c *Container) initServices() {
	opts := datasetService.Options{
		Domain:     c.Config.App.Domain,
		Production: c.Config.App.IsProduction(),
	}

	c.DataSetService = datasetService.NewDataSetService(c.Repos, c.Local, opts)
	c.DSMetaDataService = datasetService.NewDSMetaDataService(c.Repos.DSMetaData)
	c.DOIService = datasetService.NewDOIMappingService(c.DOIRepo, c.Cache)
	c.HubfileService = datasetService.NewHubfileService(c.Repos.Hubfiles, c.Local, opts)
}

func (c *Container) initHandlers() {
	pool := c.DB.Pool

	deps := datasetHandler.Deps{
		DataSets:    c.DataSetService,
		DSMetaData:  c.DSMetaDataService,
		DOIMappings: c.DOIService,
		Hubfiles:    c.HubfileService,
		Users:       c.UserRepo,
		Storage:     c.Local,
		Trackers: datasetHandler.Trackers{
			DatasetViews:     datasetService.NewRecordTracker(c.Repos.Views, model.DatasetViewRecords),
			DatasetDownloads: datasetService.NewRecordTracker(c.Repos.Downloads, model.DatasetDownloadRecords),
			FileViews: datasetService.NewRecordTracker(
				datasetRepo.NewPostgresRecordRepository(pool, model.FileViewRecords), model.FileViewRecords),
			FileDownloads: datasetService.NewRecordTracker(
				datasetRepo.NewPostgresRecordRepository(pool, model.FileDownloadRecords), model.FileDownloadRecords),
		},
		SecureCookie: c.Config.App.IsProduction(),
	}
	if c.AsynqClient != nil {
		deps.Cleaner = queue.NewAsynqExportCleaner(c.AsynqClient, c.Config.Export.CleanupDelay)
	}
	if c.MinIO != nil {
		deps.Mirror = c.MinIO
	}

	c.DataSetHandler = datasetHandler.NewHandler(deps)
}

// Cleanup releases connections in reverse order of creation.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close asynq client")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Info().Msg("Container cleaned up")
}
