package diagnosis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	unknownLabel = "Unknown Disease"
	maxLabelLen  = 80
)

var (
	// keyword heading, optionally behind markdown markup and a number: "# Diagnosis (Bimari ka Pata)", "**Recommendation:**", "## 1. Diagnosis"
	keywordHeading = regexp.MustCompile(`(?i)^\s*([#*>\-_\s]*)(?:\d+[.)]\s*)?(diagnosis|recommendations?)\b(.*)$`)
	// any markdown heading ends the current section
	markdownHeading = regexp.MustCompile(`^\s*#`)
	// "(Bimari ka Pata)" style annotation after a heading keyword
	headingAnnotation = regexp.MustCompile(`^\s*\([^)]*\)`)

	descriptorLabel = regexp.MustCompile(`(?i)(?:bimari|disease|pest|deficiency)[\s:]+([^\n,]+)`)
	capitalizedRun  = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
)

type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionDiagnosis
	sectionRecommendation
	sectionOther
)

// classifyHeading reports whether line starts a section and which one.
// inline carries any text that follows "Heading:" on the same line.
func classifyHeading(line string) (kind sectionKind, inline string, ok bool) {
	if m := keywordHeading.FindStringSubmatch(line); m != nil {
		// bullets and quotes only mark a heading when the keyword stands alone
		emphasis := strings.ContainsAny(m[1], "#*_")
		rest := headingAnnotation.ReplaceAllString(m[3], "")
		if idx := strings.Index(rest, ":"); idx >= 0 {
			inline = strings.Trim(rest[idx+1:], " \t*_")
			rest = rest[:idx]
		}
		bare := strings.Trim(rest, " \t*_")
		if emphasis || bare == "" {
			kind = sectionDiagnosis
			if strings.EqualFold(m[2][:1], "r") {
				kind = sectionRecommendation
			}
			return kind, inline, true
		}
	}
	if markdownHeading.MatchString(line) {
		return sectionOther, "", true
	}
	return sectionNone, "", false
}

// ExtractSections splits a model answer into its diagnosis and
// recommendation text. A missing diagnosis falls back to the first line; a
// missing recommendation falls back to the whole answer.
func ExtractSections(text string) (diagnosisText, recommendationText string) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return "", ""
	}

	current := sectionNone
	var diagLines, recLines []string
	var seenDiag, seenRec bool
	for _, line := range strings.Split(text, "\n") {
		if kind, inline, ok := classifyHeading(line); ok {
			current = sectionOther
			switch {
			case kind == sectionDiagnosis && !seenDiag:
				seenDiag, current = true, sectionDiagnosis
			case kind == sectionRecommendation && !seenRec:
				seenRec, current = true, sectionRecommendation
			}
			line = inline
			if line == "" {
				continue
			}
		}
		switch current {
		case sectionDiagnosis:
			diagLines = append(diagLines, line)
		case sectionRecommendation:
			recLines = append(recLines, line)
		}
	}

	diagnosisText = strings.TrimSpace(strings.Join(diagLines, "\n"))
	recommendationText = strings.TrimSpace(strings.Join(recLines, "\n"))
	if diagnosisText == "" {
		diagnosisText = strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	}
	if recommendationText == "" {
		recommendationText = text
	}
	return diagnosisText, recommendationText
}

// ClassifyDiseaseType derives the result type from diagnosis text. It never
// returns DiseaseTypeHealthy.
func ClassifyDiseaseType(diagnosisText string) DiseaseType {
	lower := strings.ToLower(diagnosisText)
	switch {
	case strings.Contains(lower, "pest"):
		return DiseaseTypePest
	case strings.Contains(lower, "deficiency"):
		return DiseaseTypeDeficiency
	default:
		return DiseaseTypeDisease
	}
}

// ExtractLabel pulls a short disease name out of diagnosis text. It tries a
// "<descriptor>: <name>" phrase, then the first run of capitalized words,
// and otherwise returns "Unknown Disease". The result is never empty.
func ExtractLabel(diagnosisText string) string {
	if m := descriptorLabel.FindStringSubmatch(diagnosisText); m != nil {
		if label := cleanLabel(m[1]); label != "" {
			return label
		}
	}
	if m := capitalizedRun.FindStringSubmatch(diagnosisText); m != nil {
		if label := cleanLabel(m[1]); label != "" {
			return label
		}
	}
	return unknownLabel
}

func cleanLabel(raw string) string {
	label := strings.Join(strings.Fields(raw), " ")
	label = strings.Trim(label, " \t.:;!?*_`'\"()[]")
	if utf8.RuneCountInString(label) > maxLabelLen {
		runes := []rune(label)
		label = strings.TrimSpace(string(runes[:maxLabelLen]))
	}
	return label
}
