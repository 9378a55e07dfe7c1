package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/Rajatpundir7/DBMS-AGRI/internal/config"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/diagnosis"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

// BuildVisionModel wires the crop assessment model: Gemini when an API key is
// set, Bedrock when a model id is set, failing over from the first to the
// second. A nil model with a nil error means assessment always falls back.
func BuildVisionModel(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (diagnosis.VisionModel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var primary, secondary diagnosis.VisionModel
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		gemini, err := diagnosis.NewGeminiVisionModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		primary = gemini
		logger.Info("gemini vision model enabled", "model", cfg.GeminiModelID)
	}
	if model := strings.TrimSpace(cfg.BedrockVisionModelID); model != "" {
		secondary = diagnosis.NewBedrockVisionModel(bedrockruntime.NewFromConfig(awsCfg), model)
		logger.Info("bedrock vision model enabled", "model", model)
	}

	switch {
	case primary == nil && secondary == nil:
		logger.Warn("no vision model configured; every diagnosis will use the fallback assessment")
		return nil, nil
	case secondary == nil:
		return primary, nil
	case primary == nil:
		return secondary, nil
	}
	return diagnosis.NewFailoverVisionModel(primary, secondary, logger), nil
}
