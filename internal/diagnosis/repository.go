package diagnosis

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// ListFilter narrows a diagnosis listing. Zero values match everything.
type ListFilter struct {
	UserID string
	Crop   string
	Status Status
	Page   int
	Limit  int
}

// ListPage is one page of diagnoses, newest first.
type ListPage struct {
	Diagnoses []*Diagnosis
	Total     int
	Page      int
	Pages     int
}

// Repository persists diagnoses. Create is the single commit point of a
// submission.
type Repository interface {
	Create(ctx context.Context, d *Diagnosis) error
	Get(ctx context.Context, id string) (*Diagnosis, error)
	List(ctx context.Context, f ListFilter) (*ListPage, error)
}

func (f ListFilter) matches(d *Diagnosis) bool {
	if f.UserID != "" && d.UserID != f.UserID {
		return false
	}
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if crop := strings.ToLower(strings.TrimSpace(f.Crop)); crop != "" {
		if !strings.Contains(strings.ToLower(d.Crop), crop) {
			return false
		}
	}
	return true
}

// paginate sorts newest first and slices out the requested page. A
// non-positive limit returns everything on one page.
func paginate(all []*Diagnosis, page, limit int) *ListPage {
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if limit <= 0 {
		return &ListPage{Diagnoses: all, Total: total, Page: 1, Pages: 1}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if page < 1 {
		page = 1
	}
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := min(start+limit, total)
	return &ListPage{Diagnoses: all[start:end], Total: total, Page: page, Pages: pages}
}

// MemoryRepository keeps diagnoses in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Diagnosis
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*Diagnosis)}
}

// Create stores a copy of d. Duplicate ids are rejected.
func (r *MemoryRepository) Create(ctx context.Context, d *Diagnosis) error {
	if d == nil || d.ID == "" {
		return errors.New("diagnosis: id required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[d.ID]; exists {
		return errors.New("diagnosis: duplicate id " + d.ID)
	}
	r.items[d.ID] = cloneDiagnosis(d)
	return nil
}

// Get returns ErrNotFound when id is unknown.
func (r *MemoryRepository) Get(ctx context.Context, id string) (*Diagnosis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDiagnosis(d), nil
}

// List implements Repository.
func (r *MemoryRepository) List(ctx context.Context, f ListFilter) (*ListPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	matched := make([]*Diagnosis, 0, len(r.items))
	for _, d := range r.items {
		if f.matches(d) {
			matched = append(matched, cloneDiagnosis(d))
		}
	}
	r.mu.RUnlock()
	return paginate(matched, f.Page, f.Limit), nil
}

func cloneDiagnosis(d *Diagnosis) *Diagnosis {
	c := *d
	c.ImageURLs = append([]string(nil), d.ImageURLs...)
	c.Results = append([]Result(nil), d.Results...)
	c.RecommendedProducts = append([]string(nil), d.RecommendedProducts...)
	if d.Location != nil {
		loc := *d.Location
		c.Location = &loc
	}
	return &c
}
