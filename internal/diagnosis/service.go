package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rajatpundir7/DBMS-AGRI/internal/analytics"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/catalog"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/observability/metrics"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("kisan.internal.diagnosis")

// Deps are the collaborators a Service is built from.
type Deps struct {
	Ingestor   *Ingestor
	Encoder    *Encoder
	Assessor   Assessor
	Fallback   *FallbackAssessor
	Matcher    *Matcher
	Repository Repository
	Products   catalog.Reader
	Events     analytics.Recorder
	Metrics    *metrics.DiagnosisMetrics
	Logger     *logging.Logger
	Now        func() time.Time
	NewID      func() string
}

// SubmitRequest is one farmer submission.
type SubmitRequest struct {
	UserID   string
	Crop     string
	Images   []Upload
	Location string
}

// Service runs the diagnosis pipeline and serves stored diagnoses.
type Service struct {
	ingestor *Ingestor
	encoder  *Encoder
	assessor Assessor
	fallback *FallbackAssessor
	matcher  *Matcher
	repo     Repository
	products catalog.Reader
	events   analytics.Recorder
	metrics  *metrics.DiagnosisMetrics
	logger   *logging.Logger
	now      func() time.Time
	newID    func() string
}

// NewService validates deps and builds a Service.
func NewService(deps Deps) *Service {
	if deps.Ingestor == nil {
		panic("diagnosis: ingestor cannot be nil")
	}
	if deps.Encoder == nil {
		panic("diagnosis: encoder cannot be nil")
	}
	if deps.Matcher == nil {
		panic("diagnosis: matcher cannot be nil")
	}
	if deps.Repository == nil {
		panic("diagnosis: repository cannot be nil")
	}
	if deps.Products == nil {
		panic("diagnosis: product reader cannot be nil")
	}
	if deps.Assessor == nil {
		deps.Assessor = NewAssessmentClient(nil, 0, deps.Logger)
	}
	if deps.Fallback == nil {
		deps.Fallback = NewFallbackAssessor(nil)
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Service{
		ingestor: deps.Ingestor,
		encoder:  deps.Encoder,
		assessor: deps.Assessor,
		fallback: deps.Fallback,
		matcher:  deps.Matcher,
		repo:     deps.Repository,
		products: deps.Products,
		events:   deps.Events,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		now:      deps.Now,
		newID:    deps.NewID,
	}
}

// Submit validates, stores and assesses the images, picks remedy products,
// persists the diagnosis and returns it with products expanded. Only
// validation and persistence failures are returned; every AI-side failure
// degrades to the fallback result.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Record, error) {
	ctx, span := tracer.Start(ctx, "diagnosis.submit", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		attribute.String("diagnosis.crop", req.Crop),
		attribute.Int("diagnosis.images", len(req.Images)),
	)

	objects, err := s.ingestor.Ingest(ctx, req.Images)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrValidation) {
			s.metrics.ObserveSubmission("rejected")
			return nil, err
		}
		span.SetStatus(codes.Error, "ingest failed")
		s.metrics.ObserveSubmission("error")
		s.logger.Error("failed to store diagnosis images", "error", err, "user_id", req.UserID)
		return nil, err
	}

	imageURLs := make([]string, 0, len(objects))
	handles := make([]string, 0, len(objects))
	for _, obj := range objects {
		imageURLs = append(imageURLs, obj.PublicPath)
		handles = append(handles, obj.Handle)
	}

	images := s.encoder.EncodeAll(ctx, handles)
	if len(images) == 0 {
		s.logger.Warn("no images could be encoded, assessing text-only", "user_id", req.UserID, "stored", len(handles))
	}

	result := s.assess(ctx, req.Crop, images)
	results := []Result{result}

	var rec Recommendation
	if result.DiseaseType != DiseaseTypeHealthy {
		rec = s.recommend(ctx, result, req.Crop)
	} else {
		rec = Recommendation{Stage: StageNone}
		s.metrics.ObserveRecommendationStage(string(StageNone))
	}

	d := &Diagnosis{
		ID:                  s.newID(),
		UserID:              req.UserID,
		Crop:                strings.TrimSpace(req.Crop),
		ImageURLs:           imageURLs,
		Results:             results,
		Location:            ParseLocation(req.Location),
		RecommendedProducts: rec.IDs(),
		Status:              StatusCompleted,
		CreatedAt:           s.now().UTC(),
	}

	if err := s.repo.Create(ctx, d); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.metrics.ObserveSubmission("error")
		s.logger.Error("failed to persist diagnosis", "error", err, "diagnosis_id", d.ID, "user_id", d.UserID)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	span.SetAttributes(attribute.String("diagnosis.id", d.ID))

	s.emit(ctx, d)
	s.metrics.ObserveSubmission("completed")

	s.logger.Info("diagnosis completed",
		"diagnosis_id", d.ID,
		"user_id", d.UserID,
		"crop", d.Crop,
		"source", result.Source,
		"disease_type", result.DiseaseType,
		"stage", rec.Stage,
		"products", len(rec.Products),
	)

	products := rec.Products
	if products == nil {
		products = []catalog.Product{}
	}
	return &Record{Diagnosis: d, Products: products}, nil
}

func (s *Service) assess(ctx context.Context, crop string, images []EncodedImage) Result {
	ctx, span := tracer.Start(ctx, "diagnosis.assess")
	defer span.End()
	span.SetAttributes(attribute.Int("diagnosis.encoded_images", len(images)))

	start := time.Now()
	outcome := s.assessor.Assess(ctx, crop, images)
	elapsed := time.Since(start).Seconds()

	var result Result
	if outcome.Success {
		result = Normalize(outcome)
	} else {
		s.logger.Warn("assessment failed, using fallback", "reason", outcome.FailureReason, "model", outcome.Model)
		result = s.fallback.Assess()
	}
	result.Confidence = clampConfidence(result.Confidence)

	s.metrics.ObserveAssessment(string(result.Source), elapsed)
	span.SetAttributes(
		attribute.String("diagnosis.source", string(result.Source)),
		attribute.String("diagnosis.disease_type", string(result.DiseaseType)),
	)
	return result
}

func (s *Service) recommend(ctx context.Context, result Result, crop string) Recommendation {
	ctx, span := tracer.Start(ctx, "diagnosis.recommend")
	defer span.End()

	rec := s.matcher.Match(ctx, result, crop)
	s.metrics.ObserveRecommendationStage(string(rec.Stage))
	span.SetAttributes(
		attribute.String("diagnosis.stage", string(rec.Stage)),
		attribute.Int("diagnosis.products", len(rec.Products)),
	)
	return rec
}

func (s *Service) emit(ctx context.Context, d *Diagnosis) {
	if s.events == nil {
		return
	}
	err := s.events.Append(ctx, analytics.Event{
		UserID:    d.UserID,
		EventType: analytics.EventDiagnosis,
		Payload: map[string]any{
			"diagnosisId": d.ID,
			"crop":        d.Crop,
			"results":     d.Results,
		},
	})
	if err != nil {
		s.logger.Warn("failed to record diagnosis event", "error", err, "diagnosis_id", d.ID)
	}
}

// Get returns one diagnosis with its products expanded.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, d), nil
}

// RecordPage is a ListPage with products expanded.
type RecordPage struct {
	Diagnoses []*Record `json:"diagnoses"`
	Total     int       `json:"total"`
	Page      int       `json:"page"`
	Pages     int       `json:"pages"`
}

// List returns stored diagnoses matching f, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) (*RecordPage, error) {
	page, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &RecordPage{
		Diagnoses: make([]*Record, 0, len(page.Diagnoses)),
		Total:     page.Total,
		Page:      page.Page,
		Pages:     page.Pages,
	}
	for _, d := range page.Diagnoses {
		out.Diagnoses = append(out.Diagnoses, s.expand(ctx, d))
	}
	return out, nil
}

func (s *Service) expand(ctx context.Context, d *Diagnosis) *Record {
	products, err := s.products.GetMany(ctx, d.RecommendedProducts)
	if err != nil {
		s.logger.Warn("failed to expand recommended products", "error", err, "diagnosis_id", d.ID)
		products = nil
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return &Record{Diagnosis: d, Products: products}
}
