package diagnosis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

// DefaultAssessmentTimeout bounds one vision model call.
const DefaultAssessmentTimeout = 45 * time.Second

// Assessor produces an Outcome for a crop and its encoded images.
type Assessor interface {
	Assess(ctx context.Context, crop string, images []EncodedImage) Outcome
}

// AssessmentClient sends the diagnosis prompt to a VisionModel and splits the
// answer into diagnosis and recommendation text. It reports failures in the
// Outcome instead of returning errors.
type AssessmentClient struct {
	model   VisionModel
	timeout time.Duration
	logger  *logging.Logger
}

// NewAssessmentClient creates a client. A nil model makes every call fail
// with "no vision model configured".
func NewAssessmentClient(model VisionModel, timeout time.Duration, logger *logging.Logger) *AssessmentClient {
	if timeout <= 0 {
		timeout = DefaultAssessmentTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AssessmentClient{model: model, timeout: timeout, logger: logger}
}

// Assess implements Assessor.
func (c *AssessmentClient) Assess(ctx context.Context, crop string, images []EncodedImage) Outcome {
	if c.model == nil {
		return Outcome{FailureReason: "no vision model configured"}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.Generate(callCtx, VisionRequest{
		System: systemPersona,
		Prompt: buildPrompt(crop, len(images)),
		Images: images,
	})
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			reason = "timeout"
		}
		c.logger.Warn("vision model call failed", "error", err, "images", len(images), "reason", reason)
		return Outcome{FailureReason: reason, Model: resp.Model}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Outcome{FailureReason: "empty response", Model: resp.Model}
	}

	diag, rec := ExtractSections(text)
	return Outcome{
		Success:            true,
		RawText:            text,
		DiagnosisText:      diag,
		RecommendationText: rec,
		Model:              resp.Model,
	}
}
