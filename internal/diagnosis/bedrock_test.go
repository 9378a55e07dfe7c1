package diagnosis

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (m *mockConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = in
	return m.out, m.err
}

func converseText(parts ...string) *bedrockruntime.ConverseOutput {
	var content []brtypes.ContentBlock
	for _, p := range parts {
		content = append(content, &brtypes.ContentBlockMemberText{Value: p})
	}
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: content,
		}},
	}
}

func TestBedrockVisionModel_Generate(t *testing.T) {
	mock := &mockConverse{out: converseText("# Diagnosis\n", "Rice Blast ")}
	model := NewBedrockVisionModel(mock, "anthropic.claude-3-haiku")

	resp, err := model.Generate(context.Background(), VisionRequest{
		System: "persona",
		Prompt: "analyze",
		Images: []EncodedImage{
			{Base64: "cG5n", MIMEType: "image/png"},
			{Base64: "anBn", MIMEType: "image/jpeg"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "# Diagnosis\nRice Blast", resp.Text)
	assert.Equal(t, "bedrock:anthropic.claude-3-haiku", resp.Model)

	in := mock.input
	require.NotNil(t, in)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(in.ModelId))
	require.Len(t, in.System, 1)
	assert.Equal(t, "persona", in.System[0].(*brtypes.SystemContentBlockMemberText).Value)

	require.Len(t, in.Messages, 1)
	content := in.Messages[0].Content
	require.Len(t, content, 3)
	assert.Equal(t, "analyze", content[0].(*brtypes.ContentBlockMemberText).Value)

	png := content[1].(*brtypes.ContentBlockMemberImage).Value
	assert.Equal(t, brtypes.ImageFormatPng, png.Format)
	assert.Equal(t, []byte("png"), png.Source.(*brtypes.ImageSourceMemberBytes).Value)
	jpg := content[2].(*brtypes.ContentBlockMemberImage).Value
	assert.Equal(t, brtypes.ImageFormatJpeg, jpg.Format)
}

func TestBedrockVisionModel_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewBedrockVisionModel(&mockConverse{err: errors.New("throttled")}, "m").Generate(ctx, VisionRequest{Prompt: "p"})
	assert.ErrorContains(t, err, "throttled")

	_, err = NewBedrockVisionModel(&mockConverse{out: converseText("  ")}, "m").Generate(ctx, VisionRequest{Prompt: "p"})
	assert.Error(t, err)

	_, err = NewBedrockVisionModel(&mockConverse{out: &bedrockruntime.ConverseOutput{}}, "m").Generate(ctx, VisionRequest{Prompt: "p"})
	assert.Error(t, err)

	_, err = NewBedrockVisionModel(&mockConverse{out: converseText("x")}, "m").
		Generate(ctx, VisionRequest{Images: []EncodedImage{{Base64: "%%"}}})
	assert.Error(t, err)
}

func TestBedrockImageFormat(t *testing.T) {
	assert.Equal(t, brtypes.ImageFormatWebp, bedrockImageFormat("image/webp"))
	assert.Equal(t, brtypes.ImageFormatGif, bedrockImageFormat("image/gif"))
	assert.Equal(t, brtypes.ImageFormatJpeg, bedrockImageFormat(""))
}

func TestNewBedrockVisionModelPanics(t *testing.T) {
	assert.Panics(t, func() { NewBedrockVisionModel(nil, "m") })
	assert.Panics(t, func() { NewBedrockVisionModel(&mockConverse{}, " ") })
}

func TestGeminiParts(t *testing.T) {
	parts, err := geminiParts(VisionRequest{
		Prompt: "analyze",
		Images: []EncodedImage{{Base64: "cG5n", MIMEType: "image/png"}},
	})
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, genai.Text("analyze"), parts[0])
	assert.Equal(t, genai.Blob{MIMEType: "image/png", Data: []byte("png")}, parts[1])

	_, err = geminiParts(VisionRequest{Images: []EncodedImage{{Base64: "%%"}}})
	assert.Error(t, err)
}

func TestGeminiText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("# Diagnosis\n"), genai.Blob{}, genai.Text("Brown Spot")}},
	}}}
	text, err := geminiText(resp)
	require.NoError(t, err)
	assert.Equal(t, "# Diagnosis\nBrown Spot", text)

	_, err = geminiText(nil)
	assert.Error(t, err)
	_, err = geminiText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.Error(t, err)
	_, err = geminiText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("   ")}},
	}}})
	assert.Error(t, err)
}

func TestNewGeminiVisionModelRequiresKey(t *testing.T) {
	_, err := NewGeminiVisionModel(context.Background(), "", "")
	assert.Error(t, err)
}
