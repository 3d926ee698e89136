// Package generator は、組み立て済みプロンプトと参照画像を画像生成 API に
// 送信し、応答をドメインの結果へ正規化する境界アダプターです。
package generator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/shouni/gemini-character-kit/pkg/apierr"
	"github.com/shouni/gemini-character-kit/pkg/domain"
)

// DefaultImageModel は画像生成に使う既定モデルです。
const DefaultImageModel = "gemini-2.5-flash-image"

// Request は1回の画像生成要求です。参照画像は最大2枚で、
// 順序は常に 顔参照 → スタイル参照 です。
type Request struct {
	Prompt   string
	FaceRef  *domain.ReferenceImage
	StyleRef *domain.ReferenceImage
	Seed     *int32 // nil でランダム、値指定で固定
}

// Result は生成された画像データとそのメタデータです。
type Result struct {
	Data     []byte
	MIMEType string
}

// Client は Gemini の画像生成エンドポイントに対するクライアントです。
type Client struct {
	models  ContentGenerator
	model   string
	limiter *rate.Limiter
}

// New は API キーから Client を初期化します。キーの解決（優先順位と
// MissingCredential 判定）は ResolveCredential で済ませてから渡してください。
func New(ctx context.Context, apiKey, model string, limiter *rate.Limiter) (*Client, error) {
	if apiKey == "" {
		return nil, apierr.MissingCredential()
	}
	if model == "" {
		model = DefaultImageModel
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini クライアントの初期化に失敗しました: %w", err)
	}

	return &Client{models: genaiClient.Models, model: model, limiter: limiter}, nil
}

// NewWithGenerator は生成サービスを注入して Client を初期化します。テスト用途です。
func NewWithGenerator(gen ContentGenerator, model string, limiter *rate.Limiter) (*Client, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (ContentGenerator) is required")
	}
	if model == "" {
		model = DefaultImageModel
	}
	return &Client{models: gen, model: model, limiter: limiter}, nil
}

// Generate はプロンプトと参照画像を送信し、生成された画像を返します。
// 失敗はすべて apierr の分類済みエラーとして返ります。
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apierr.Classify(err)
		}
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	parts = appendImagePart(parts, req.FaceRef)
	parts = appendImagePart(parts, req.StyleRef)

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		Seed:               req.Seed,
	}

	slog.InfoContext(ctx, "画像生成リクエスト送信",
		"model", c.model,
		"parts", len(parts),
		"seed_pinned", req.Seed != nil,
	)

	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{{Parts: parts}}, config)
	if err != nil {
		classified := apierr.Classify(err)
		slog.WarnContext(ctx, "画像生成リクエスト失敗", "kind", classified.Kind, "error", err)
		return nil, classified
	}

	return parseResponse(resp)
}

// parseResponse は応答を決まった優先順位で解釈します:
// 候補なし → EmptyResponse、安全拒否 → SafetyRejected、画像パーツ → 成功、
// テキストのみ → NoImageReturned(説明付き)、どちらも無し → NoImageReturned。
func parseResponse(resp *genai.GenerateContentResponse) (*Result, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, apierr.EmptyResponse()
	}

	// 最初の候補のみを利用する
	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, apierr.SafetyRejected()
	}

	var explanation string
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &Result{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
			}
			if part.Text != "" && explanation == "" {
				explanation = part.Text
			}
		}
	}

	return nil, apierr.NoImageReturned(explanation)
}

func appendImagePart(parts []*genai.Part, ref *domain.ReferenceImage) []*genai.Part {
	if ref == nil || len(ref.Data) == 0 {
		return parts
	}
	return append(parts, genai.NewPartFromBytes(ref.Data, ref.MIMEType))
}
