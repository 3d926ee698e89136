package domain

// ResultPhase は生成結果スロットの状態タグです。
type ResultPhase string

const (
	PhaseIdle    ResultPhase = "idle"
	PhaseLoading ResultPhase = "loading"
	PhaseSuccess ResultPhase = "success"
	PhaseFailure ResultPhase = "failure"
)

// GenerationResult は1回の生成試行の結果スロットです。
// UI 上は同時に1リクエストのみ進行し、試行ごとに上書きされます。
type GenerationResult struct {
	Phase    ResultPhase `json:"phase"`
	Image    []byte      `json:"image,omitempty"`
	MIMEType string      `json:"mime_type,omitempty"`
	Message  string      `json:"message,omitempty"`
}

// IdleResult は初期状態のスロットを返します。
func IdleResult() GenerationResult {
	return GenerationResult{Phase: PhaseIdle}
}

// LoadingResult はリクエスト進行中のスロットを返します。
func LoadingResult() GenerationResult {
	return GenerationResult{Phase: PhaseLoading}
}

// SuccessResult は生成された画像データを持つスロットを返します。
func SuccessResult(image []byte, mimeType string) GenerationResult {
	return GenerationResult{Phase: PhaseSuccess, Image: image, MIMEType: mimeType}
}

// FailureResult は利用者向けメッセージを持つ失敗スロットを返します。
func FailureResult(message string) GenerationResult {
	return GenerationResult{Phase: PhaseFailure, Message: message}
}

// InFlight はリクエストが進行中かどうかを返します。
func (r GenerationResult) InFlight() bool {
	return r.Phase == PhaseLoading
}
