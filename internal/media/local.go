package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore keeps images on the local filesystem under root and exposes
// them below publicPrefix (served by the API's static file route).
type LocalStore struct {
	root         string
	publicPrefix string
}

// NewLocalStore resolves root to an absolute directory.
func NewLocalStore(root, publicPrefix string) (*LocalStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("media: local root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("media: resolve root %s: %w", root, err)
	}
	publicPrefix = "/" + strings.Trim(publicPrefix, "/")
	if publicPrefix == "/" {
		publicPrefix = ""
	}
	return &LocalStore{root: abs, publicPrefix: publicPrefix}, nil
}

// Root returns the absolute storage directory.
func (s *LocalStore) Root() string { return s.root }

// PublicPrefix returns the URL prefix images are served under.
func (s *LocalStore) PublicPrefix() string { return s.publicPrefix }

// Save writes data to root/name, creating parent directories on demand.
func (s *LocalStore) Save(ctx context.Context, name, _ string, data []byte) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	rel, err := s.clean(name)
	if err != nil {
		return Object{}, err
	}
	full := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Object{}, fmt.Errorf("media: create dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return Object{}, fmt.Errorf("media: write %s: %w", rel, err)
	}
	return Object{
		Name:       path.Base(filepath.ToSlash(rel)),
		PublicPath: s.publicPrefix + "/" + filepath.ToSlash(rel),
		Handle:     full,
		Size:       int64(len(data)),
	}, nil
}

// Open reads an image. The handle may be an absolute path, a path relative
// to root, or a public path such as /uploads/diagnosis/x.jpg.
func (s *LocalStore) Open(ctx context.Context, handle string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(handle)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, full)
	}
	if err != nil {
		return nil, fmt.Errorf("media: read %s: %w", full, err)
	}
	return data, nil
}

func (s *LocalStore) resolve(handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", fmt.Errorf("%w: empty handle", ErrNotFound)
	}
	if filepath.IsAbs(handle) {
		if _, err := os.Stat(handle); err == nil {
			return handle, nil
		}
	}

	slashed := filepath.ToSlash(handle)
	if s.publicPrefix != "" {
		slashed = strings.TrimPrefix(slashed, s.publicPrefix+"/")
	}
	slashed = strings.TrimLeft(slashed, "/")
	slashed = strings.TrimPrefix(slashed, "uploads/")

	rel, err := s.clean(slashed)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, rel), nil
}

// clean rejects names escaping root.
func (s *LocalStore) clean(name string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimLeft(name, "/")))
	if rel == "." || rel == "" || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	return rel, nil
}
