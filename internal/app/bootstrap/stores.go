package bootstrap

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Rajatpundir7/DBMS-AGRI/internal/analytics"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/catalog"
	appconfig "github.com/Rajatpundir7/DBMS-AGRI/internal/config"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/diagnosis"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/media"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

// MediaStore is the image store plus, for local storage, the directory the
// router should serve.
type MediaStore struct {
	Store media.Store
	Local *media.LocalStore
}

// BuildMediaStore returns the S3 store when a bucket is configured, local
// disk otherwise.
func BuildMediaStore(cfg *appconfig.Config, awsCfg aws.Config) (MediaStore, error) {
	if cfg.UsesS3Images() {
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
		return MediaStore{Store: media.NewS3Store(client, cfg.ImageBucket, "", cfg.ImagePublicBaseURL)}, nil
	}
	local, err := media.NewLocalStore(cfg.UploadDir, cfg.UploadPublicPrefix)
	if err != nil {
		return MediaStore{}, fmt.Errorf("bootstrap: local image store: %w", err)
	}
	return MediaStore{Store: local, Local: local}, nil
}

// BuildCatalogSource picks the product source: the bundled seed in memory
// mode, DynamoDB otherwise, fronted by Redis when a client is available.
func BuildCatalogSource(cfg *appconfig.Config, awsCfg aws.Config, redisClient *redis.Client, logger *logging.Logger) (catalog.Source, error) {
	if logger == nil {
		logger = logging.Default()
	}
	var source catalog.Source
	if cfg.UseMemoryStore {
		products, err := catalog.SeedProducts()
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load seed catalog: %w", err)
		}
		source = catalog.NewMemorySource(products)
		logger.Info("using in-memory product catalog", "products", len(products))
	} else {
		source = catalog.NewDynamoSource(dynamodb.NewFromConfig(awsCfg), cfg.ProductsTable, logger)
	}
	if redisClient != nil {
		source = catalog.NewRedisCache(redisClient, source, cfg.CatalogCacheTTL, logger)
		logger.Info("catalog cache enabled", "ttl", cfg.CatalogCacheTTL)
	}
	return source, nil
}

// BuildDiagnosisRepository returns the DynamoDB repository unless memory
// mode is on.
func BuildDiagnosisRepository(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) diagnosis.Repository {
	if cfg.UseMemoryStore {
		return diagnosis.NewMemoryRepository()
	}
	return diagnosis.NewDynamoRepository(dynamodb.NewFromConfig(awsCfg), cfg.DiagnosesTable, logger)
}

// BuildEventRecorder fans analytics events out to the log, Postgres and SQS,
// whichever are configured.
func BuildEventRecorder(cfg *appconfig.Config, awsCfg aws.Config, pool *pgxpool.Pool, logger *logging.Logger) analytics.Recorder {
	recorders := analytics.MultiRecorder{analytics.NewLogRecorder(logger)}
	if pool != nil {
		recorders = append(recorders, analytics.NewPostgresRecorder(pool))
	}
	if queueURL := strings.TrimSpace(cfg.AnalyticsQueueURL); queueURL != "" {
		recorders = append(recorders, analytics.NewSQSRecorder(sqs.NewFromConfig(awsCfg), queueURL))
	}
	return recorders
}

// Close releases whatever connections were opened.
func Close(redisClient *redis.Client, pool *pgxpool.Pool) {
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if pool != nil {
		pool.Close()
	}
}
