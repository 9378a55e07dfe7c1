package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	PublicBaseURL      string
	LogLevel           string
	CORSAllowedOrigins []string
	JWTSecret          string

	// Crop assessment (vision model) configuration
	GeminiAPIKey         string
	GeminiModelID        string
	BedrockVisionModelID string
	AssessmentTimeout    time.Duration

	// Image ingestion
	UploadDir          string
	UploadPublicPrefix string
	ImageBucket        string
	ImagePublicBaseURL string
	MaxImages          int
	MaxImageBytes      int64

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	DiagnosesTable      string
	ProductsTable       string
	UseMemoryStore      bool

	// Catalog cache
	RedisAddr       string
	RedisPassword   string
	CatalogCacheTTL time.Duration

	// Usage analytics
	DatabaseURL       string
	AnalyticsQueueURL string

	// Per-client throttle on diagnosis submissions
	DiagnosisRatePerSec float64
	DiagnosisRateBurst  int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		JWTSecret:          getEnv("JWT_SECRET", ""),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:        getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockVisionModelID: getEnv("BEDROCK_VISION_MODEL_ID", ""),
		AssessmentTimeout:    getEnvAsDuration("ASSESSMENT_TIMEOUT", 45*time.Second),

		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		UploadPublicPrefix: getEnv("UPLOAD_PUBLIC_PREFIX", "/uploads"),
		ImageBucket:        getEnv("IMAGE_BUCKET", ""),
		ImagePublicBaseURL: strings.TrimRight(getEnv("IMAGE_PUBLIC_BASE_URL", ""), "/"),
		MaxImages:          getEnvAsInt("MAX_IMAGES", 5),
		MaxImageBytes:      getEnvAsInt64("MAX_IMAGE_BYTES", 10<<20),

		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		DiagnosesTable:      getEnv("DIAGNOSES_TABLE", "diagnoses"),
		ProductsTable:       getEnv("PRODUCTS_TABLE", "products"),
		UseMemoryStore:      getEnvAsBool("USE_MEMORY_STORE", false),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		AnalyticsQueueURL: getEnv("ANALYTICS_QUEUE_URL", ""),

		DiagnosisRatePerSec: getEnvAsFloat("DIAGNOSIS_RATE_PER_SEC", 0.5),
		DiagnosisRateBurst:  getEnvAsInt("DIAGNOSIS_RATE_BURST", 5),
	}
}

// UsesS3Images reports whether uploaded images go to S3 instead of local disk.
func (c *Config) UsesS3Images() bool {
	return strings.TrimSpace(c.ImageBucket) != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank entries.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
