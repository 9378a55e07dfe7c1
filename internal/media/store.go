// Package media stores uploaded crop images and reads them back for encoding.
package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by Open when the handle does not resolve to a stored object.
var ErrNotFound = errors.New("media: object not found")

// Object describes a stored image. PublicPath is what clients use to fetch
// the image; Handle is what Open accepts to read the bytes back.
type Object struct {
	Name       string `json:"name"`
	PublicPath string `json:"publicPath"`
	Handle     string `json:"handle"`
	Size       int64  `json:"size"`
}

// Store persists image bytes and reads them back by handle.
type Store interface {
	Save(ctx context.Context, name, contentType string, data []byte) (Object, error)
	Open(ctx context.Context, handle string) ([]byte, error)
}

// ObjectName builds a collision-resistant name: prefix, millisecond
// timestamp, a random suffix and the original (lower-cased) extension.
func ObjectName(prefix, original string, now time.Time, suffix int) string {
	ext := strings.ToLower(filepath.Ext(original))
	if prefix == "" {
		prefix = "image"
	}
	return fmt.Sprintf("%s-%d-%d%s", prefix, now.UnixMilli(), suffix, ext)
}
