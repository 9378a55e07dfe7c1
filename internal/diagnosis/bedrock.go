package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockVisionModel implements VisionModel with the Bedrock Converse API.
type BedrockVisionModel struct {
	api     bedrockConverseAPI
	modelID string
}

// NewBedrockVisionModel creates a Bedrock-backed vision model.
func NewBedrockVisionModel(api bedrockConverseAPI, modelID string) *BedrockVisionModel {
	if api == nil {
		panic("diagnosis: bedrock converse client cannot be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		panic("diagnosis: bedrock model id cannot be empty")
	}
	return &BedrockVisionModel{api: api, modelID: modelID}
}

// Generate sends the prompt and images as a single user turn.
func (b *BedrockVisionModel) Generate(ctx context.Context, req VisionRequest) (VisionResponse, error) {
	content := []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: req.Prompt}}
	for _, img := range req.Images {
		data, err := img.Decode()
		if err != nil {
			return VisionResponse{}, err
		}
		content = append(content, &brtypes.ContentBlockMemberImage{Value: brtypes.ImageBlock{
			Format: bedrockImageFormat(img.MIMEType),
			Source: &brtypes.ImageSourceMemberBytes{Value: data},
		}})
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.modelID),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: content,
		}},
	}
	if strings.TrimSpace(req.System) != "" {
		input.System = []brtypes.SystemContentBlock{&brtypes.SystemContentBlockMemberText{Value: req.System}}
	}

	out, err := b.api.Converse(ctx, input)
	if err != nil {
		return VisionResponse{}, fmt.Errorf("diagnosis: bedrock converse failed: %w", err)
	}
	text, err := bedrockText(out)
	if err != nil {
		return VisionResponse{}, err
	}
	return VisionResponse{Text: strings.TrimSpace(text), Model: "bedrock:" + b.modelID}, nil
}

func bedrockImageFormat(mimeType string) brtypes.ImageFormat {
	switch mimeType {
	case "image/png":
		return brtypes.ImageFormatPng
	case "image/webp":
		return brtypes.ImageFormatWebp
	case "image/gif":
		return brtypes.ImageFormatGif
	default:
		return brtypes.ImageFormatJpeg
	}
}

func bedrockText(out *bedrockruntime.ConverseOutput) (string, error) {
	if out == nil {
		return "", errors.New("diagnosis: bedrock response is nil")
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("diagnosis: bedrock response did not include a message output")
	}

	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("diagnosis: bedrock response contained no text content blocks")
	}
	return b.String(), nil
}
