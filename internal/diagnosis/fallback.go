package diagnosis

import "math/rand/v2"

// RandomSource picks an index in [0, n).
type RandomSource interface {
	IntN(n int) int
}

type defaultRandom struct{}

func (defaultRandom) IntN(n int) int { return rand.IntN(n) }

var fallbackCatalog = []Result{
	{Label: "Rice Blast", Confidence: 85, DiseaseType: DiseaseTypeDisease, Treatment: "Apply fungicide containing tricyclazole or propiconazole"},
	{Label: "Brown Spot", Confidence: 78, DiseaseType: DiseaseTypeDisease, Treatment: "Use mancozeb or carbendazim fungicide"},
	{Label: "Leaf Blight", Confidence: 72, DiseaseType: DiseaseTypeDisease, Treatment: "Apply copper-based fungicides"},
	{Label: "Aphids", Confidence: 80, DiseaseType: DiseaseTypePest, Treatment: "Use imidacloprid or acephate insecticides"},
	{Label: "Nitrogen Deficiency", Confidence: 75, DiseaseType: DiseaseTypeDeficiency, Treatment: "Apply urea or ammonium sulfate fertilizer"},
	{Label: "Healthy Plant", Confidence: 90, DiseaseType: DiseaseTypeHealthy, Treatment: "Continue regular care and monitoring"},
}

// FallbackCatalog returns a copy of the canned outcomes.
func FallbackCatalog() []Result {
	out := make([]Result, len(fallbackCatalog))
	copy(out, fallbackCatalog)
	return out
}

// FallbackAssessor substitutes a canned result when the vision model fails.
type FallbackAssessor struct {
	rnd RandomSource
}

// NewFallbackAssessor uses rnd to pick entries; nil selects math/rand/v2.
func NewFallbackAssessor(rnd RandomSource) *FallbackAssessor {
	if rnd == nil {
		rnd = defaultRandom{}
	}
	return &FallbackAssessor{rnd: rnd}
}

// Assess returns one entry drawn uniformly from the catalog.
func (f *FallbackAssessor) Assess() Result {
	idx := f.rnd.IntN(len(fallbackCatalog))
	if idx < 0 || idx >= len(fallbackCatalog) {
		idx = 0
	}
	r := fallbackCatalog[idx]
	r.Source = SourceFallbackSimulation
	r.Language = "english"
	return r
}
