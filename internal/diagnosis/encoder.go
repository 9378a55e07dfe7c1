package diagnosis

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Rajatpundir7/DBMS-AGRI/internal/media"
	"github.com/Rajatpundir7/DBMS-AGRI/internal/observability/metrics"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

// Encoder reads stored images back and base64-encodes them.
type Encoder struct {
	store   media.Store
	metrics *metrics.DiagnosisMetrics
	logger  *logging.Logger
}

// NewEncoder creates an encoder over store.
func NewEncoder(store media.Store, logger *logging.Logger) *Encoder {
	if store == nil {
		panic("diagnosis: media store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Encoder{store: store, logger: logger}
}

// WithMetrics records images that could not be encoded.
func (e *Encoder) WithMetrics(m *metrics.DiagnosisMetrics) *Encoder {
	e.metrics = m
	return e
}

// MIMETypeFor infers an image content type from the file extension.
func MIMETypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// Encode reads one image. Missing images yield ErrImageNotFound.
func (e *Encoder) Encode(ctx context.Context, handle string) (EncodedImage, error) {
	data, err := e.store.Open(ctx, handle)
	if errors.Is(err, media.ErrNotFound) {
		return EncodedImage{}, fmt.Errorf("%w: %s", ErrImageNotFound, handle)
	}
	if err != nil {
		return EncodedImage{}, fmt.Errorf("diagnosis: read image %s: %w", handle, err)
	}
	return EncodedImage{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: MIMETypeFor(handle),
	}, nil
}

// EncodeAll encodes handles in order, skipping any that fail. An empty
// result is valid; assessment then runs text-only.
func (e *Encoder) EncodeAll(ctx context.Context, handles []string) []EncodedImage {
	out := make([]EncodedImage, 0, len(handles))
	for _, h := range handles {
		img, err := e.Encode(ctx, h)
		if err != nil {
			reason := "read_error"
			if errors.Is(err, ErrImageNotFound) {
				reason = "not_found"
			}
			e.logger.Warn("skipping image that could not be encoded", "handle", h, "error", err)
			e.metrics.ObserveImageDropped(reason)
			continue
		}
		out = append(out, img)
	}
	return out
}
