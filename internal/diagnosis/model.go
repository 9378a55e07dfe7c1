// Package diagnosis turns farmer-submitted crop photos into a persisted
// diagnosis with remedy product recommendations.
package diagnosis

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/Rajatpundir7/DBMS-AGRI/internal/catalog"
)

// DiseaseType classifies a diagnosis result.
type DiseaseType string

const (
	DiseaseTypeDisease    DiseaseType = "disease"
	DiseaseTypePest       DiseaseType = "pest"
	DiseaseTypeDeficiency DiseaseType = "deficiency"
	DiseaseTypeHealthy    DiseaseType = "healthy"
)

// Source tags where a result came from.
type Source string

const (
	SourceExternalModel      Source = "external-model"
	SourceFallbackSimulation Source = "fallback-simulation"
)

// Status is the persisted lifecycle state. StatusFailed is accepted on read
// but never written by Service.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// LanguageHinglish is the register requested from the vision model.
const LanguageHinglish = "hinglish"

// Location is the optional farm location hint.
type Location struct {
	Latitude  *float64 `json:"latitude,omitempty" dynamodbav:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" dynamodbav:"longitude,omitempty"`
	Address   string   `json:"address,omitempty" dynamodbav:"address,omitempty"`
}

// Result is one classification with its remedy text.
type Result struct {
	Label         string      `json:"label" dynamodbav:"label"`
	Confidence    float64     `json:"confidence" dynamodbav:"confidence"`
	DiseaseType   DiseaseType `json:"diseaseType" dynamodbav:"diseaseType"`
	Treatment     string      `json:"treatment" dynamodbav:"treatment"`
	FullDiagnosis string      `json:"fullDiagnosis,omitempty" dynamodbav:"fullDiagnosis,omitempty"`
	Source        Source      `json:"source" dynamodbav:"source"`
	Model         string      `json:"model,omitempty" dynamodbav:"model,omitempty"`
	Language      string      `json:"language,omitempty" dynamodbav:"language,omitempty"`
}

// Diagnosis is the persisted entity.
type Diagnosis struct {
	ID                  string    `json:"id" dynamodbav:"id"`
	UserID              string    `json:"userId" dynamodbav:"userId"`
	Crop                string    `json:"crop,omitempty" dynamodbav:"crop,omitempty"`
	ImageURLs           []string  `json:"imageUrls" dynamodbav:"imageUrls"`
	Results             []Result  `json:"results" dynamodbav:"results"`
	Location            *Location `json:"location,omitempty" dynamodbav:"location,omitempty"`
	RecommendedProducts []string  `json:"-" dynamodbav:"recommendedProducts"`
	Status              Status    `json:"status" dynamodbav:"status"`
	CreatedAt           time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// Record is a Diagnosis with its recommended products expanded for display.
type Record struct {
	*Diagnosis
	Products []catalog.Product `json:"recommendedProducts"`
}

// EncodedImage is an image ready to attach to a model request.
type EncodedImage struct {
	Base64   string
	MIMEType string
}

// Decode returns the raw image bytes.
func (e EncodedImage) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(e.Base64)
	if err != nil {
		return nil, fmt.Errorf("diagnosis: decode image: %w", err)
	}
	return data, nil
}

// Outcome is what the assessment client reports for one request.
type Outcome struct {
	Success            bool
	RawText            string
	DiagnosisText      string
	RecommendationText string
	FailureReason      string
	Model              string
}
