package diagnosis

import (
	"context"
	"strings"

	"github.com/Rajatpundir7/DBMS-AGRI/internal/catalog"
	"github.com/Rajatpundir7/DBMS-AGRI/pkg/logging"
)

// DefaultRecommendationLimit caps every cascade stage.
const DefaultRecommendationLimit = 5

// Stage names which cascade step produced a recommendation.
type Stage string

const (
	StageNone        Stage = "none"
	StageDiseaseName Stage = "disease-name"
	StageCategory    Stage = "category"
	StageCrop        Stage = "crop"
	StageAny         Stage = "any"
)

// Recommendation is the winning stage and its products.
type Recommendation struct {
	Stage    Stage
	Products []catalog.Product
}

// IDs returns the product ids in order.
func (r Recommendation) IDs() []string {
	ids := make([]string, 0, len(r.Products))
	for _, p := range r.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

// CategoryFor maps a disease type to the remedy category searched in the
// category stage.
func CategoryFor(t DiseaseType) catalog.Category {
	switch t {
	case DiseaseTypePest:
		return catalog.CategoryInsecticide
	case DiseaseTypeDeficiency:
		return catalog.CategoryFertilizer
	default:
		return catalog.CategoryFungicide
	}
}

var (
	diseaseNameFields = []string{catalog.FieldTitle, catalog.FieldDescription, catalog.FieldTags}
	cropFields        = []string{catalog.FieldCrops}
)

// Matcher picks remedy products with a descending-specificity cascade. The
// first stage that yields any product wins; stages are never merged.
type Matcher struct {
	reader catalog.Reader
	limit  int
	logger *logging.Logger
}

// NewMatcher creates a matcher over reader.
func NewMatcher(reader catalog.Reader, logger *logging.Logger) *Matcher {
	if reader == nil {
		panic("diagnosis: catalog reader cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Matcher{reader: reader, limit: DefaultRecommendationLimit, logger: logger}
}

// Match runs the cascade for result. Healthy results get no products.
func (m *Matcher) Match(ctx context.Context, result Result, crop string) Recommendation {
	if result.DiseaseType == DiseaseTypeHealthy {
		return Recommendation{Stage: StageNone}
	}

	type stage struct {
		name Stage
		run  func() ([]catalog.Product, error)
	}
	label := strings.TrimSpace(result.Label)
	crop = strings.TrimSpace(crop)
	stages := []stage{
		{StageDiseaseName, func() ([]catalog.Product, error) {
			if label == "" {
				return nil, nil
			}
			return m.reader.FindByTextMatch(ctx, diseaseNameFields, label, m.limit)
		}},
		{StageCategory, func() ([]catalog.Product, error) {
			return m.reader.FindByField(ctx, catalog.FieldCategory, string(CategoryFor(result.DiseaseType)), m.limit)
		}},
		{StageCrop, func() ([]catalog.Product, error) {
			if crop == "" {
				return nil, nil
			}
			return m.reader.FindByTextMatch(ctx, cropFields, crop, m.limit)
		}},
		{StageAny, func() ([]catalog.Product, error) {
			return m.reader.FindAny(ctx, m.limit)
		}},
	}

	for _, s := range stages {
		products, err := s.run()
		if err != nil {
			m.logger.Warn("recommendation stage failed", "stage", s.name, "error", err)
			continue
		}
		if len(products) > 0 {
			if len(products) > m.limit {
				products = products[:m.limit]
			}
			return Recommendation{Stage: s.name, Products: products}
		}
	}
	return Recommendation{Stage: StageNone}
}
