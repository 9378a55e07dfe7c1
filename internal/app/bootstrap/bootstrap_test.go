package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/Rajatpundir7/DBMS-AGRI/internal/analytics"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/catalog"
	appconfig "github.com/Rajatpundir7/DBMS-AGRI/internal/config"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/diagnosis"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/media"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

func testAWSConfig() aws.Config {
	return aws.Config{Region: "ap-south-1", Credentials: aws.AnonymousCredentials{}}
}

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
	if client := BuildRedisClient(context.Background(), nil, nil, false); client != nil {
		t.Fatalf("expected nil client for nil config")
	}
}

func TestBuildRedisClientVerifiesConnection(t *testing.T) {
	mr := miniredis.RunT(t)

	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	defer client.Close()

	addr := mr.Addr()
	mr.Close()
	if client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	if pool := BuildPostgresPool(context.Background(), "", logging.Discard()); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
	if pool := BuildPostgresPool(context.Background(), "not a url ::", logging.Discard()); pool != nil {
		t.Fatalf("expected nil pool for invalid URL")
	}
}

func TestBuildVisionModelRequiresConfig(t *testing.T) {
	if _, err := BuildVisionModel(context.Background(), nil, testAWSConfig(), logging.Discard()); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildVisionModelNoneConfigured(t *testing.T) {
	model, err := BuildVisionModel(context.Background(), &appconfig.Config{}, testAWSConfig(), logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != nil {
		t.Fatalf("expected nil model when nothing is configured")
	}
}

func TestBuildVisionModelBedrockOnly(t *testing.T) {
	cfg := &appconfig.Config{BedrockVisionModelID: "anthropic.claude-3-haiku"}

	model, err := BuildVisionModel(context.Background(), cfg, testAWSConfig(), logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := model.(*diagnosis.BedrockVisionModel); !ok {
		t.Fatalf("expected bedrock model, got %T", model)
	}
}

func TestBuildMediaStore(t *testing.T) {
	dir := t.TempDir()
	store, err := BuildMediaStore(&appconfig.Config{UploadDir: dir, UploadPublicPrefix: "/uploads"}, testAWSConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Local == nil || store.Local.Root() == "" {
		t.Fatalf("expected local store")
	}

	store, err = BuildMediaStore(&appconfig.Config{ImageBucket: "kisan-images"}, testAWSConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Store.(*media.S3Store); !ok || store.Local != nil {
		t.Fatalf("expected s3 store, got %T", store.Store)
	}
}

func TestBuildCatalogSourceMemoryWithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), false)
	defer client.Close()

	source, err := BuildCatalogSource(&appconfig.Config{UseMemoryStore: true}, testAWSConfig(), client, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := source.(*catalog.RedisCache); !ok {
		t.Fatalf("expected redis cache, got %T", source)
	}
	products, err := source.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(products) == 0 {
		t.Fatalf("expected seed products")
	}
}

func TestBuildCatalogSourceDynamo(t *testing.T) {
	source, err := BuildCatalogSource(&appconfig.Config{ProductsTable: "products"}, testAWSConfig(), nil, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := source.(*catalog.DynamoSource); !ok {
		t.Fatalf("expected dynamo source, got %T", source)
	}
}

func TestBuildDiagnosisRepository(t *testing.T) {
	if _, ok := BuildDiagnosisRepository(&appconfig.Config{UseMemoryStore: true}, testAWSConfig(), nil).(*diagnosis.MemoryRepository); !ok {
		t.Fatalf("expected memory repository")
	}
	repo := BuildDiagnosisRepository(&appconfig.Config{DiagnosesTable: "diagnoses"}, testAWSConfig(), logging.Discard())
	if _, ok := repo.(*diagnosis.DynamoRepository); !ok {
		t.Fatalf("expected dynamo repository, got %T", repo)
	}
}

func TestBuildEventRecorder(t *testing.T) {
	rec := BuildEventRecorder(&appconfig.Config{}, testAWSConfig(), nil, logging.Discard())
	multi, ok := rec.(analytics.MultiRecorder)
	if !ok || len(multi) != 1 {
		t.Fatalf("expected log-only recorder, got %#v", rec)
	}

	rec = BuildEventRecorder(&appconfig.Config{AnalyticsQueueURL: "http://localhost:4566/queue/events"}, testAWSConfig(), nil, logging.Discard())
	if multi := rec.(analytics.MultiRecorder); len(multi) != 2 {
		t.Fatalf("expected log and sqs recorders, got %d", len(multi))
	}
}
