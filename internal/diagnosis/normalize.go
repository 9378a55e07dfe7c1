package diagnosis

// ExternalConfidence is assigned to every model-sourced result; the vision
// model reports no score of its own.
const ExternalConfidence = 85

// Normalize converts a successful assessment into a Result.
func Normalize(o Outcome) Result {
	return Result{
		Label:         ExtractLabel(o.DiagnosisText),
		Confidence:    clampConfidence(ExternalConfidence),
		DiseaseType:   ClassifyDiseaseType(o.DiagnosisText),
		Treatment:     o.RecommendationText,
		FullDiagnosis: o.DiagnosisText,
		Source:        SourceExternalModel,
		Model:         o.Model,
		Language:      LanguageHinglish,
	}
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	}
	return c
}
