package server

import "github.com/shouni/gemini-character-kit/pkg/domain"

// stateResponse はセッション状態のスナップショットです。
// 結果スロットの画像バイト列は JSON 上は base64 で表現されます。
type stateResponse struct {
	Profile     domain.CharacterProfile  `json:"profile"`
	Scene       domain.ScenePlan         `json:"scene"`
	Options     domain.GenerationOptions `json:"options"`
	HasFaceRef  bool                     `json:"has_face_ref"`
	HasStyleRef bool                     `json:"has_style_ref"`
	Result      domain.GenerationResult  `json:"result"`
}

// promptResponse はプロンプトプレビューの応答です。
type promptResponse struct {
	Prompt string `json:"prompt"`
}

// referenceURLRequest は URL 指定の参照画像取り込み要求です。
type referenceURLRequest struct {
	URL string `json:"url"`
}

// chatRequest はアシスタントへのメッセージ送信要求です。
type chatRequest struct {
	Text string `json:"text"`
}

// chatResponse は追加されたアシスタント応答ターンを返します。
type chatResponse struct {
	Turn domain.ChatTurn `json:"turn"`
}

// conversationResponse は会話ログ全体です。
type conversationResponse struct {
	Turns []domain.ChatTurn `json:"turns"`
}

// catalogResponse はフィールドごとの選択肢一覧です。
type catalogResponse struct {
	Options map[string][]string `json:"options"`
}

// errorResponse は失敗時の共通封筒です。
type errorResponse struct {
	Error string `json:"error"`
}
