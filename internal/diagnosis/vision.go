package diagnosis

import (
	"context"
	"errors"

	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

// VisionRequest is one multimodal prompt.
type VisionRequest struct {
	System string
	Prompt string
	Images []EncodedImage
}

// VisionResponse carries the model's answer and which model produced it.
type VisionResponse struct {
	Text  string
	Model string
}

// VisionModel answers an image-and-text prompt.
type VisionModel interface {
	Generate(ctx context.Context, req VisionRequest) (VisionResponse, error)
}

// FailoverVisionModel wraps a primary model with a secondary provider.
// If the primary fails, the request is retried once on the secondary.
type FailoverVisionModel struct {
	primary   VisionModel
	secondary VisionModel
	logger    *logging.Logger
}

// NewFailoverVisionModel creates a failover model. A nil secondary leaves
// only the primary in play.
func NewFailoverVisionModel(primary, secondary VisionModel, logger *logging.Logger) *FailoverVisionModel {
	if logger == nil {
		logger = logging.Default()
	}
	return &FailoverVisionModel{primary: primary, secondary: secondary, logger: logger}
}

// Generate implements VisionModel.
func (m *FailoverVisionModel) Generate(ctx context.Context, req VisionRequest) (VisionResponse, error) {
	if m.primary == nil {
		if m.secondary == nil {
			return VisionResponse{}, errors.New("diagnosis: no vision model configured")
		}
		return m.secondary.Generate(ctx, req)
	}

	resp, err := m.primary.Generate(ctx, req)
	if err == nil {
		return resp, nil
	}

	m.logger.Warn("primary vision model failed, attempting secondary",
		"error", err.Error(),
		"secondary_available", m.secondary != nil,
	)
	if m.secondary == nil || ctx.Err() != nil {
		return VisionResponse{}, err
	}

	secondaryResp, secondaryErr := m.secondary.Generate(ctx, req)
	if secondaryErr != nil {
		m.logger.Error("secondary vision model also failed",
			"primary_error", err.Error(),
			"secondary_error", secondaryErr.Error(),
		)
		return VisionResponse{}, secondaryErr
	}
	m.logger.Info("secondary vision model succeeded after primary failure")
	return secondaryResp, nil
}
