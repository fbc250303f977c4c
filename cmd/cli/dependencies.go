package cli

import (
	"context"

	"github.com/dropspace/dropspace/internal/controllers"
	"github.com/dropspace/dropspace/internal/domain"
	"github.com/dropspace/dropspace/internal/ingestion"
	"github.com/dropspace/dropspace/internal/managers"
	"github.com/dropspace/dropspace/internal/notifications"
	"github.com/dropspace/dropspace/internal/repositories/mongodb"
	"github.com/dropspace/dropspace/internal/services"
	"github.com/dropspace/dropspace/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AppDependencies contains everything the HTTP server needs.
type AppDependencies struct {
	UploadController *controllers.UploadController
	LinkController   *controllers.LinkController
	TreeController   *controllers.TreeController
}

// BuildAppDependencies creates and wires up all service dependencies.
func BuildAppDependencies(ctx context.Context, config *Config) (*AppDependencies, error) {
	log.Info().Msg("Building service dependencies")

	mongoClient, err := mongodb.Connect(ctx, config.MongoURI)
	if err != nil {
		return nil, err
	}

	database := mongoClient.Database(config.MongoDatabase)

	linkRepository := mongodb.NewLinkRepository(database)
	batchRepository := mongodb.NewBatchRepository(database)
	folderRepository := mongodb.NewFolderRepository(database)
	fileRepository := mongodb.NewFileRepository(database)
	quotaRepository := mongodb.NewQuotaRepository(database)
	txnRunner := mongodb.NewTxnRunner(mongoClient)

	objectStore, err := storage.NewS3ObjectStore(storage.S3Config{
		Region:          config.S3Region,
		Endpoint:        config.S3Endpoint,
		AccessKeyID:     config.S3AccessKeyID,
		SecretAccessKey: config.S3SecretAccessKey,
		ForcePathStyle:  config.S3ForcePathStyle,
	})
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddress,
		Password: config.RedisPassword,
	})

	eventPublisher := notifications.NewRedisEventPublisher(notifications.RedisEventPublisherDependencies{
		Client:           redisClient,
		SubscribeTimeout: config.NotifySubscribeTimeout(),
	})

	quotaManager := managers.NewQuotaManager(managers.QuotaManagerDependencies{
		QuotaRepository: quotaRepository,
	})

	pathResolver := ingestion.NewPathResolver(domain.Buckets{
		Shared:    config.SharedBucket,
		Workspace: config.WorkspaceBucket,
	})

	folderMirror := ingestion.NewFolderMirror(ingestion.FolderMirrorDependencies{
		FolderRepository: folderRepository,
	})

	recorder := ingestion.NewRecorder(ingestion.RecorderDependencies{
		FileRepository:  fileRepository,
		LinkRepository:  linkRepository,
		BatchRepository: batchRepository,
		Transactioner:   txnRunner,
	})

	completionTracker := ingestion.NewCompletionTracker(ingestion.CompletionTrackerDependencies{
		BatchRepository: batchRepository,
		LinkRepository:  linkRepository,
		EventPublisher:  eventPublisher,
	})

	ingestionService := ingestion.NewService(ingestion.ServiceDependencies{
		LinkRepository:    linkRepository,
		BatchRepository:   batchRepository,
		PathResolver:      pathResolver,
		FolderMirror:      folderMirror,
		QuotaManager:      quotaManager,
		ObjectStore:       objectStore,
		Recorder:          recorder,
		CompletionTracker: completionTracker,
	})

	linkService := services.NewLinkService(services.LinkServiceDependencies{
		LinkRepository:    linkRepository,
		QuotaRepository:   quotaRepository,
		DefaultQuotaBytes: config.DefaultQuotaBytes,
	})

	batchService := services.NewBatchService(services.BatchServiceDependencies{
		BatchRepository: batchRepository,
		LinkRepository:  linkRepository,
	})

	folderService := services.NewFolderService(services.FolderServiceDependencies{
		FolderRepository: folderRepository,
		FileRepository:   fileRepository,
	})

	treeService := services.NewTreeService(services.TreeServiceDependencies{
		FileRepository:   fileRepository,
		FolderRepository: folderRepository,
	})

	fileService := services.NewFileService(services.FileServiceDependencies{
		FileRepository: fileRepository,
		ObjectStore:    objectStore,
	})

	log.Info().Msg("Service dependencies built successfully")

	return &AppDependencies{
		UploadController: controllers.NewUploadController(controllers.UploadControllerDependencies{
			IngestionService: ingestionService,
		}),
		LinkController: controllers.NewLinkController(controllers.LinkControllerDependencies{
			LinkService:  linkService,
			BatchService: batchService,
		}),
		TreeController: controllers.NewTreeController(controllers.TreeControllerDependencies{
			TreeService:   treeService,
			FolderService: folderService,
			FileService:   fileService,
		}),
	}, nil
}
