package diagnosis

import (
	"fmt"
	"strings"
)

const defaultCropName = "Crop"

const systemPersona = "You are a world-class plant pathologist and agricultural expert. " +
	"You are analyzing images of crops to provide accurate disease diagnosis and actionable, " +
	"non-pesticide-intensive treatment plans."

const userPromptTemplate = `Analyze the provided images of the **%s** crop.

IMPORTANT: You MUST provide the answer in Hinglish (a mix of Hindi and English using Roman script), so it is easy for a farmer to understand. For example: "Yeh 'Bacterial Spot' bimari hai. Paani kam dijiye."

1. Identify the most likely disease, pest, or deficiency present (in Hinglish).
2. Then, provide a concise action plan or recommendation to treat the issue (in Hinglish).

Structure your answer clearly with the following headings:
# Diagnosis (Bimari ka Pata)
# Recommendation (Upay)`

const textOnlyNote = "\n\nNo photo could be attached. Base the answer on the most common problems of this crop and say that a photo would improve the diagnosis."

// buildPrompt renders the user instruction for crop. An empty crop is
// described as "Crop".
func buildPrompt(crop string, imageCount int) string {
	crop = strings.TrimSpace(crop)
	if crop == "" {
		crop = defaultCropName
	}
	prompt := fmt.Sprintf(userPromptTemplate, crop)
	if imageCount == 0 {
		prompt += textOnlyNote
	}
	return prompt
}
