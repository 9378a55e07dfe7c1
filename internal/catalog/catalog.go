package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

const (
	defaultPageLimit  = 20
	maxPageLimit      = 100
	recommendLimit    = 10
	unlimitedSentinel = 0
)

// Reader is the read-only query surface used by the recommendation matcher.
// Results are in catalog order and capped at limit (limit <= 0 means no cap).
type Reader interface {
	FindByTextMatch(ctx context.Context, fields []string, pattern string, limit int) ([]Product, error)
	FindByField(ctx context.Context, field, value string, limit int) ([]Product, error)
	FindAny(ctx context.Context, limit int) ([]Product, error)
	GetMany(ctx context.Context, ids []string) ([]Product, error)
}

// Catalog answers product queries over a Source.
type Catalog struct {
	source Source
	logger *logging.Logger
}

var _ Reader = (*Catalog)(nil)

// New creates a catalog over source.
func New(source Source, logger *logging.Logger) *Catalog {
	if source == nil {
		panic("catalog: source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Catalog{source: source, logger: logger}
}

// FindByTextMatch returns products where any of fields contains pattern as a
// case-insensitive literal substring.
func (c *Catalog) FindByTextMatch(ctx context.Context, fields []string, pattern string, limit int) ([]Product, error) {
	if strings.TrimSpace(pattern) == "" || len(fields) == 0 {
		return nil, nil
	}
	return c.filter(ctx, limit, func(p *Product) bool {
		return p.containsText(fields, pattern)
	})
}

// FindByField returns products whose field equals value case-insensitively.
// For tags and crops a single matching element is enough.
func (c *Catalog) FindByField(ctx context.Context, field, value string, limit int) ([]Product, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	return c.filter(ctx, limit, func(p *Product) bool {
		return p.fieldEquals(field, value)
	})
}

// FindAny returns the first limit products in catalog order.
func (c *Catalog) FindAny(ctx context.Context, limit int) ([]Product, error) {
	return c.filter(ctx, limit, func(*Product) bool { return true })
}

// Get returns a single product.
func (c *Catalog) Get(ctx context.Context, id string) (*Product, error) {
	products, err := c.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, ErrProductNotFound
}

// GetMany returns the products for ids in the order given. Unknown ids are
// skipped.
func (c *Catalog) GetMany(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	products, err := c.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListFilter narrows the browse listing.
type ListFilter struct {
	Category string
	Crop     string
	Search   string
	Page     int
	Limit    int
}

// ListPage is one page of the browse listing.
type ListPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}

// List returns products newest first, filtered and paginated.
func (c *Catalog) List(ctx context.Context, f ListFilter) (*ListPage, error) {
	matched, err := c.filter(ctx, unlimitedSentinel, func(p *Product) bool {
		if f.Category != "" && !p.fieldEquals(FieldCategory, f.Category) {
			return false
		}
		if f.Crop != "" && !p.containsText([]string{FieldCrops}, f.Crop) {
			return false
		}
		if f.Search != "" && !p.containsText([]string{FieldTitle, FieldDescription, FieldComposition, FieldTags}, f.Search) {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page, limit := normalizePage(f.Page, f.Limit)
	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	return &ListPage{
		Products: matched[start:end],
		Total:    total,
		Page:     page,
		Pages:    (total + limit - 1) / limit,
	}, nil
}

// RecommendRequest is the ad-hoc recommendation query.
type RecommendRequest struct {
	Disease  string `json:"disease"`
	Crop     string `json:"crop"`
	Category string `json:"category"`
}

// Recommend returns up to ten products matching every supplied filter.
func (c *Catalog) Recommend(ctx context.Context, req RecommendRequest) ([]Product, error) {
	return c.filter(ctx, recommendLimit, func(p *Product) bool {
		if req.Crop != "" && !p.containsText([]string{FieldCrops}, req.Crop) {
			return false
		}
		if req.Category != "" && !p.fieldEquals(FieldCategory, req.Category) {
			return false
		}
		if req.Disease != "" && !p.containsText([]string{FieldTitle, FieldDescription, FieldTags}, req.Disease) {
			return false
		}
		return true
	})
}

func (c *Catalog) filter(ctx context.Context, limit int, keep func(*Product) bool) ([]Product, error) {
	products, err := c.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	out := make([]Product, 0)
	for i := range products {
		if limit > 0 && len(out) >= limit {
			break
		}
		if keep(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
