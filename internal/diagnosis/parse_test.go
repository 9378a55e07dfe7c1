package diagnosis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSections(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantDia string
		wantRec string
	}{
		{
			name:    "markdown headings",
			text:    "# Diagnosis\nRice Blast detected\n# Recommendation\nUse Tricyclazole",
			wantDia: "Rice Blast detected",
			wantRec: "Use Tricyclazole",
		},
		{
			name: "headings with hinglish annotation",
			text: "# Diagnosis (Bimari ka Pata)\nYeh 'Leaf Blight' bimari hai.\nPatte peele ho rahe hain.\n\n" +
				"# Recommendation (Upay)\nCopper fungicide ka spray karein.",
			wantDia: "Yeh 'Leaf Blight' bimari hai.\nPatte peele ho rahe hain.",
			wantRec: "Copper fungicide ka spray karein.",
		},
		{
			name:    "bold headings with inline text",
			text:    "**Diagnosis:** Brown Spot\n**Recommendations:** Spray mancozeb",
			wantDia: "Brown Spot",
			wantRec: "Spray mancozeb",
		},
		{
			name:    "reordered headings",
			text:    "## Recommendation\nPaani kam dijiye\n## Diagnosis\nRoot rot",
			wantDia: "Root rot",
			wantRec: "Paani kam dijiye",
		},
		{
			name:    "other heading ends a section",
			text:    "# Diagnosis\nAphids\n# Notes\nCheck daily\n# Recommendation\nNeem oil",
			wantDia: "Aphids",
			wantRec: "Neem oil",
		},
		{
			name:    "no headings",
			text:    "Looks like nitrogen deficiency.\nApply urea.",
			wantDia: "Looks like nitrogen deficiency.",
			wantRec: "Looks like nitrogen deficiency.\nApply urea.",
		},
		{
			name:    "missing recommendation",
			text:    "# Diagnosis\nStem borer pest",
			wantDia: "Stem borer pest",
			wantRec: "# Diagnosis\nStem borer pest",
		},
		{
			name:    "diagnosis word inside a sentence is not a heading",
			text:    "The diagnosis is unclear\n# Recommendation\nSend a closer photo",
			wantDia: "The diagnosis is unclear",
			wantRec: "Send a closer photo",
		},
		{
			name:    "bullet starting with a keyword stays in the section",
			text:    "# Diagnosis\nLeaf spots\n- Diagnosis confirmed by lesions\nSpread is slow\n# Recommendation\nSpray",
			wantDia: "Leaf spots\n- Diagnosis confirmed by lesions\nSpread is slow",
			wantRec: "Spray",
		},
		{
			name:    "bullet heading with inline text",
			text:    "- Diagnosis: Leaf Blight\n- Recommendation: Copper spray",
			wantDia: "Leaf Blight",
			wantRec: "Copper spray",
		},
		{
			name:    "numbered headings",
			text:    "## 1. Diagnosis\nRice Blast seen on leaves\n## 2) Recommendation\nUse Tricyclazole",
			wantDia: "Rice Blast seen on leaves",
			wantRec: "Use Tricyclazole",
		},
		{
			name:    "crlf line endings",
			text:    "# Diagnosis\r\nLeaf Curl\r\n# Recommendation\r\nRemove affected leaves",
			wantDia: "Leaf Curl",
			wantRec: "Remove affected leaves",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dia, rec := ExtractSections(tt.text)
			assert.Equal(t, tt.wantDia, dia)
			assert.Equal(t, tt.wantRec, rec)
		})
	}
}

func TestExtractSections_Empty(t *testing.T) {
	dia, rec := ExtractSections("   ")
	assert.Empty(t, dia)
	assert.Empty(t, rec)
}

func TestClassifyDiseaseType(t *testing.T) {
	assert.Equal(t, DiseaseTypePest, ClassifyDiseaseType("Whitefly PEST infestation"))
	assert.Equal(t, DiseaseTypeDeficiency, ClassifyDiseaseType("Zinc deficiency in leaves"))
	assert.Equal(t, DiseaseTypePest, ClassifyDiseaseType("pest causing nutrient deficiency"))
	assert.Equal(t, DiseaseTypeDisease, ClassifyDiseaseType("Rice Blast"))
	assert.Equal(t, DiseaseTypeDisease, ClassifyDiseaseType("Plant looks healthy"))
}

func TestExtractLabel(t *testing.T) {
	assert.Equal(t, "Rice Blast", ExtractLabel("Rice Blast detected"))
	assert.Equal(t, "Leaf Blight", ExtractLabel("Disease: Leaf Blight, spreading fast"))
	assert.Equal(t, "Zinc", ExtractLabel("deficiency: **Zinc**"))
	assert.Equal(t, unknownLabel, ExtractLabel("kuch samajh nahi aaya"))
	assert.Equal(t, unknownLabel, ExtractLabel(""))
}

func TestExtractLabel_NeverEmpty(t *testing.T) {
	inputs := []string{
		"Yeh 'Bacterial Spot' bimari hai. Paani kam dijiye.",
		"disease: ,,,",
		"pest:\n",
		"***",
		"# Diagnosis (Bimari ka Pata)",
		strings.Repeat("Very Long Name ", 40),
	}
	for _, in := range inputs {
		label := ExtractLabel(in)
		assert.NotEmpty(t, label, "input %q", in)
		assert.LessOrEqual(t, len([]rune(label)), maxLabelLen, "input %q", in)
	}
}

func TestExtractLabel_NumberedHeading(t *testing.T) {
	dia, _ := ExtractSections("## 1. Diagnosis\nRice Blast seen on leaves\n## 2. Recommendation\nSpray")
	assert.Equal(t, "Rice Blast", ExtractLabel(dia))
}
