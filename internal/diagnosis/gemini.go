package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiVisionModel implements VisionModel using Google's Gemini API.
type GeminiVisionModel struct {
	client  *genai.Client
	modelID string
}

// NewGeminiVisionModel creates a Gemini-backed vision model.
func NewGeminiVisionModel(ctx context.Context, apiKey, modelID string) (*GeminiVisionModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("diagnosis: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("diagnosis: failed to create gemini client: %w", err)
	}
	return &GeminiVisionModel{client: client, modelID: modelID}, nil
}

// Generate sends the prompt and inline images to Gemini.
func (g *GeminiVisionModel) Generate(ctx context.Context, req VisionRequest) (VisionResponse, error) {
	model := g.client.GenerativeModel(g.modelID)
	if strings.TrimSpace(req.System) != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	parts, err := geminiParts(req)
	if err != nil {
		return VisionResponse{}, err
	}
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return VisionResponse{}, fmt.Errorf("diagnosis: gemini request failed: %w", err)
	}

	text, err := geminiText(resp)
	if err != nil {
		return VisionResponse{}, err
	}
	return VisionResponse{Text: text, Model: "gemini:" + g.modelID}, nil
}

// Close releases resources held by the Gemini client.
func (g *GeminiVisionModel) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func geminiParts(req VisionRequest) ([]genai.Part, error) {
	parts := make([]genai.Part, 0, len(req.Images)+1)
	parts = append(parts, genai.Text(req.Prompt))
	for _, img := range req.Images {
		data, err := img.Decode()
		if err != nil {
			return nil, err
		}
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: data})
	}
	return parts, nil
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("diagnosis: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("diagnosis: gemini returned empty content")
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("diagnosis: gemini response contained no text")
	}
	return text, nil
}
