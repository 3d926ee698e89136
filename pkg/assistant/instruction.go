package assistant

import (
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/gemini-character-kit/pkg/catalog"
)

// systemInstructionHeader はアシスタントの役割と出力契約を定義します。
// 各フィールドの値は必ずカタログから選ばせ、応答は JSON 固定です。
const systemInstructionHeader = `You are an expert creative assistant for a branding character generator. Your task is to help the user create a complete "visual recipe" and a "test scene".
1. Analyze the user's request and any provided reference images to understand the desired character aesthetic.
2. **Main Recipe:**
   - Suggest a creative and fitting 'characterName'.
   - Select the MOST SUITABLE option for each main visual recipe category (proportion, material, face, etc.) from the provided lists.
   - Suggest relevant 'specificDetails' that would enhance the character. Keep it concise.
3. **Test Scene:**
   - To bring the character to life, select the BEST 'pose', 'angle', and 'background' from their respective lists that match the user's request and the character's persona.
4. **Explanation:** Provide a friendly, conversational explanation for all your choices (both main recipe and test scene).
5. **Format:** You MUST return your response in the required JSON format.`

// buildSystemInstruction は役割定義とカタログ列挙を連結します。
func buildSystemInstruction() string {
	var sb strings.Builder
	sb.WriteString(systemInstructionHeader)
	sb.WriteString("\n\n")
	sb.WriteString(catalog.PromptOptionsBlock())
	return sb.String()
}

// buildUserPrompt はユーザーの自由入力を定型の依頼文に包みます。
func buildUserPrompt(userText string) string {
	var sb strings.Builder
	sb.WriteString("User's request: ")
	sb.WriteString(strings.TrimSpace(userText))
	sb.WriteString("\nPlease generate the visual recipe and test scene based on my request and any provided images (main references and the one attached to this message).")
	return sb.String()
}

// suggestionSchema は応答の JSON スキーマです。トップレベルに explanation と
// profile を必須で要求し、profile の値はすべて任意の文字列フィールドです。
func suggestionSchema() *genai.Schema {
	profileFields := []string{
		"characterName", "proportion", "material", "face_shape", "eyebrows",
		"eyes", "lips", "nose", "hair_hijab", "accessories", "outfit",
		"outfit_color", "lighting", "specificDetails",
		"pose", "angle", "background",
	}

	properties := make(map[string]*genai.Schema, len(profileFields))
	for _, field := range profileFields {
		properties[field] = &genai.Schema{Type: genai.TypeString}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"explanation": {
				Type:        genai.TypeString,
				Description: "A friendly explanation of the suggested style choices.",
			},
			"profile": {
				Type:        genai.TypeObject,
				Description: "The selected options for the visual recipe and test scene. All values MUST be one of the provided options.",
				Properties:  properties,
			},
		},
		Required: []string{"explanation", "profile"},
	}
}
