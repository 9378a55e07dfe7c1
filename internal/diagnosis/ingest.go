package diagnosis

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/Rajatpundir7/DBMS-AGRI/internal/media"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/observability/metrics"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

const (
	DefaultMaxImages     = 5
	DefaultMaxImageBytes = 10 << 20

	objectPrefix = "diagnosis"
	nameSuffixN  = 1_000_000_000
)

// Upload is one image as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Ingestor validates uploads and stores them.
type Ingestor struct {
	store     media.Store
	maxImages int
	maxBytes  int64
	rnd       RandomSource
	now       func() time.Time
	metrics   *metrics.DiagnosisMetrics
	logger    *logging.Logger
}

// NewIngestor creates an ingestor. Non-positive limits use the defaults
// (5 images, 10 MiB each).
func NewIngestor(store media.Store, maxImages int, maxBytes int64, logger *logging.Logger) *Ingestor {
	if store == nil {
		panic("diagnosis: media store cannot be nil")
	}
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ingestor{
		store:     store,
		maxImages: maxImages,
		maxBytes:  maxBytes,
		rnd:       defaultRandom{},
		now:       time.Now,
		logger:    logger,
	}
}

// WithMetrics records dropped images.
func (i *Ingestor) WithMetrics(m *metrics.DiagnosisMetrics) *Ingestor {
	i.metrics = m
	return i
}

// WithRandom overrides the random source used for object names.
func (i *Ingestor) WithRandom(rnd RandomSource) *Ingestor {
	if rnd != nil {
		i.rnd = rnd
	}
	return i
}

// MaxImages returns the per-request image cap.
func (i *Ingestor) MaxImages() int { return i.maxImages }

// MaxBytes returns the per-image byte ceiling.
func (i *Ingestor) MaxBytes() int64 { return i.maxBytes }

// Ingest stores uploads in order and returns one object per kept image.
// Oversized images are dropped; every size check runs before anything is
// stored.
func (i *Ingestor) Ingest(ctx context.Context, uploads []Upload) ([]media.Object, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one image required", ErrValidation)
	}
	if len(uploads) > i.maxImages {
		return nil, fmt.Errorf("%w: at most %d images allowed", ErrValidation, i.maxImages)
	}

	kept := make([]Upload, 0, len(uploads))
	for idx, up := range uploads {
		if int64(len(up.Data)) > i.maxBytes {
			i.logger.Warn("dropping oversized image",
				"index", idx,
				"filename", up.Filename,
				"size", len(up.Data),
				"limit", i.maxBytes,
				"error", ErrPayloadTooLarge,
			)
			i.metrics.ObserveImageDropped("too_large")
			continue
		}
		kept = append(kept, up)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrPayloadTooLarge)
	}

	objects := make([]media.Object, 0, len(kept))
	for _, up := range kept {
		name := objectPrefix + "/" + media.ObjectName(objectPrefix, up.Filename, i.now(), i.rnd.IntN(nameSuffixN))
		contentType := up.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(up.Filename))
		}
		obj, err := i.store.Save(ctx, name, contentType, up.Data)
		if err != nil {
			return nil, fmt.Errorf("diagnosis: store image %s: %w", up.Filename, err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
