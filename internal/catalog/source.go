package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed seed_products.json
var seedProductsJSON []byte

// Source loads the full product list.
type Source interface {
	All(ctx context.Context) ([]Product, error)
}

// SeedProducts returns the bundled starter catalog.
func SeedProducts() ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(seedProductsJSON, &products); err != nil {
		return nil, fmt.Errorf("catalog: decode seed products: %w", err)
	}
	return products, nil
}

// MemorySource keeps the catalog in memory.
type MemorySource struct {
	mu       sync.RWMutex
	products []Product
}

// NewMemorySource copies products into a new in-memory source.
func NewMemorySource(products []Product) *MemorySource {
	s := &MemorySource{}
	s.Replace(products)
	return s
}

// All returns a copy of the catalog in catalog order.
func (s *MemorySource) All(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// Replace swaps the catalog contents.
func (s *MemorySource) Replace(products []Product) {
	sorted := make([]Product, len(products))
	copy(sorted, products)
	sortCatalogOrder(sorted)

	s.mu.Lock()
	s.products = sorted
	s.mu.Unlock()
}

// sortCatalogOrder orders products oldest first, ties broken by id.
func sortCatalogOrder(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		}
		return products[i].ID < products[j].ID
	})
}
