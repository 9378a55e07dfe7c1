package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	appconfig "github.com/Rajatpundir7/DBMS-AGRI/internal/config"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

func TestSetupDiagnosisMetricsExposesMetrics(t *testing.T) {
	handler, metrics := setupDiagnosisMetrics()
	if handler == nil || metrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	metrics.ObserveSubmission("completed")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "kisan_diagnosis_submissions_total") {
		t.Fatalf("expected submissions counter to be exported")
	}
}

func TestSetupRouterMemoryMode(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		JWTSecret:          "secret",
		UploadDir:          t.TempDir(),
		UploadPublicPrefix: "/uploads",
		UseMemoryStore:     true,
		AssessmentTimeout:  time.Second,
		MaxImages:          5,
		MaxImageBytes:      1 << 20,
		DiagnosisRateBurst: 5,
	}
	metricsHandler, diagnosisMetrics := setupDiagnosisMetrics()
	awsCfg := aws.Config{Region: "ap-south-1", Credentials: aws.AnonymousCredentials{}}

	handler, limiter, err := setupRouter(context.Background(), cfg, awsCfg, nil, nil, diagnosisMetrics, metricsHandler, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limiter == nil {
		t.Fatalf("expected rate limiter")
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var page struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if page.Total == 0 {
		t.Fatalf("expected seeded products")
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/analytics/activity", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for admin route, got %d", rr.Code)
	}
}
