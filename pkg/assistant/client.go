// Package assistant は、自由入力と参照画像から完全なレシピ提案を取得する
// 境界アダプターです。提案は検証なしの Suggestion として返り、適用は常に
// 利用者の明示操作に委ねられます。
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/shouni/gemini-character-kit/pkg/apierr"
	"github.com/shouni/gemini-character-kit/pkg/domain"
)

// DefaultAssistantModel は提案生成に使う既定モデルです。
const DefaultAssistantModel = "gemini-2.5-flash"

// ContentGenerator は Gemini SDK の生成呼び出しを抽象化します。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Request は1回の提案要求です。画像は最大3枚:
// 顔参照 → スタイル参照 → このメッセージに添付された画像 の順で送ります。
type Request struct {
	UserText  string
	FaceRef   *domain.ReferenceImage
	StyleRef  *domain.ReferenceImage
	ChatImage *domain.ReferenceImage
}

// Reply は解析済みの提案応答です。
type Reply struct {
	Explanation string
	Suggestion  domain.Suggestion
}

// Client は提案エンドポイントに対するクライアントです。
type Client struct {
	models ContentGenerator
	model  string
}

// New は API キーから Client を初期化します。
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, apierr.MissingCredential()
	}
	if model == "" {
		model = DefaultAssistantModel
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini クライアントの初期化に失敗しました: %w", err)
	}

	return &Client{models: genaiClient.Models, model: model}, nil
}

// NewWithGenerator は生成サービスを注入して Client を初期化します。テスト用途です。
func NewWithGenerator(gen ContentGenerator, model string) (*Client, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (ContentGenerator) is required")
	}
	if model == "" {
		model = DefaultAssistantModel
	}
	return &Client{models: gen, model: model}, nil
}

// Suggest はユーザーの意図と画像から提案を取得します。
// スキーマに合致しない応答は MalformedResponse になります。
func (c *Client) Suggest(ctx context.Context, req Request) (*Reply, error) {
	parts := []*genai.Part{genai.NewPartFromText(buildUserPrompt(req.UserText))}
	for _, ref := range []*domain.ReferenceImage{req.FaceRef, req.StyleRef, req.ChatImage} {
		if ref != nil && len(ref.Data) > 0 {
			parts = append(parts, genai.NewPartFromBytes(ref.Data, ref.MIMEType))
		}
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(buildSystemInstruction())}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    suggestionSchema(),
	}

	slog.InfoContext(ctx, "提案リクエスト送信", "model", c.model, "images", len(parts)-1)

	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{{Parts: parts}}, config)
	if err != nil {
		classified := apierr.Classify(err)
		slog.WarnContext(ctx, "提案リクエスト失敗", "kind", classified.Kind, "error", err)
		return nil, classified
	}

	return parseReply(resp)
}

// parseReply は JSON 応答を Reply に変換します。候補なしは EmptyResponse、
// 期待スキーマに合わない本文は MalformedResponse です。
func parseReply(resp *genai.GenerateContentResponse) (*Reply, error) {
	raw := responseText(resp)
	if raw == "" {
		return nil, apierr.EmptyResponse()
	}

	var parsed struct {
		Explanation *string            `json:"explanation"`
		Profile     *domain.Suggestion `json:"profile"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, apierr.MalformedResponse(err)
	}
	if parsed.Explanation == nil || parsed.Profile == nil {
		return nil, apierr.MalformedResponse(fmt.Errorf("explanation / profile が欠けています"))
	}

	return &Reply{Explanation: *parsed.Explanation, Suggestion: *parsed.Profile}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}
