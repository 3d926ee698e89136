package generator

import (
	"context"

	"google.golang.org/genai"
)

// ContentGenerator は Gemini SDK の生成呼び出しを抽象化します。
// 実体は genai.Client の Models サービスで、テストではモックに差し替えます。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}
