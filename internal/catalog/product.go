// Package catalog serves the read-only product catalog (pesticides and
// fertilizers) used for browsing and for diagnosis recommendations.
package catalog

import (
	"errors"
	"strings"
	"time"
)

// ErrProductNotFound indicates no product exists with the requested id.
var ErrProductNotFound = errors.New("catalog: product not found")

// Category classifies a product.
type Category string

const (
	CategoryInsecticide     Category = "insecticide"
	CategoryFungicide       Category = "fungicide"
	CategoryHerbicide       Category = "herbicide"
	CategoryFertilizer      Category = "fertilizer"
	CategoryGrowthRegulator Category = "growth-regulator"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryInsecticide, CategoryFungicide, CategoryHerbicide, CategoryFertilizer, CategoryGrowthRegulator:
		return true
	}
	return false
}

// Queryable product fields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldComposition = "composition"
	FieldTags        = "tags"
	FieldCrops       = "crops"
	FieldCategory    = "category"
)

// Dosage describes application rate and method.
type Dosage struct {
	PerAcre string `json:"perAcre,omitempty" dynamodbav:"perAcre,omitempty"`
	Format  string `json:"format,omitempty" dynamodbav:"format,omitempty"`
}

// Product is a catalog item.
type Product struct {
	ID            string    `json:"id" dynamodbav:"id"`
	Title         string    `json:"title" dynamodbav:"title"`
	Category      Category  `json:"category" dynamodbav:"category"`
	Composition   string    `json:"composition" dynamodbav:"composition"`
	Dosage        Dosage    `json:"dosage" dynamodbav:"dosage"`
	Crops         []string  `json:"crops" dynamodbav:"crops"`
	Price         float64   `json:"price" dynamodbav:"price"`
	Image         string    `json:"image" dynamodbav:"image"`
	Description   string    `json:"description" dynamodbav:"description"`
	Brand         string    `json:"brand,omitempty" dynamodbav:"brand,omitempty"`
	Weight        string    `json:"weight,omitempty" dynamodbav:"weight,omitempty"`
	InStock       bool      `json:"inStock" dynamodbav:"inStock"`
	StockQuantity int       `json:"stockQuantity" dynamodbav:"stockQuantity"`
	Tags          []string  `json:"tags" dynamodbav:"tags"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// fieldValues returns the text values of a field, lower-cased.
func (p *Product) fieldValues(field string) []string {
	switch field {
	case FieldTitle:
		return []string{strings.ToLower(p.Title)}
	case FieldDescription:
		return []string{strings.ToLower(p.Description)}
	case FieldComposition:
		return []string{strings.ToLower(p.Composition)}
	case FieldCategory:
		return []string{strings.ToLower(string(p.Category))}
	case FieldTags:
		return lowerAll(p.Tags)
	case FieldCrops:
		return lowerAll(p.Crops)
	}
	return nil
}

// containsText reports whether any of fields contains pattern as a
// case-insensitive literal substring.
func (p *Product) containsText(fields []string, pattern string) bool {
	needle := strings.ToLower(pattern)
	for _, field := range fields {
		for _, v := range p.fieldValues(field) {
			if strings.Contains(v, needle) {
				return true
			}
		}
	}
	return false
}

// fieldEquals reports whether field holds value (case-insensitive). For the
// set-valued fields tags and crops any element may match.
func (p *Product) fieldEquals(field, value string) bool {
	want := strings.ToLower(strings.TrimSpace(value))
	for _, v := range p.fieldValues(field) {
		if v == want {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
