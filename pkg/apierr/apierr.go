// Package apierr は、外部 API 境界で発生したエラーを分類の確定した
// ドメインエラーへ正規化します。境界アダプターの失敗は必ずこのいずれかの
// Kind に翻訳され、生のトランスポートエラー文字列は Unknown 以外では
// そのまま利用者に出しません。
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind はエラー分類のタグです。
type Kind string

const (
	KindMissingCredential Kind = "missing_credential"
	KindInvalidCredential Kind = "invalid_credential"
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindSafetyRejected    Kind = "safety_rejected"
	KindEmptyResponse     Kind = "empty_response"
	KindNoImageReturned   Kind = "no_image_returned"
	KindMalformedResponse Kind = "malformed_response"
	KindUnknown           Kind = "unknown"
)

// Error は利用者向けメッセージを持つ分類済みエラーです。
type Error struct {
	Kind        Kind
	Message     string // 利用者に表示する文言
	RetryHint   string // QuotaExceeded のみ: サーバー推奨の再試行待ち時間
	Explanation string // NoImageReturned のみ: API が代わりに返したテキスト
	cause       error
}

// Error は利用者向けメッセージを返します。
func (e *Error) Error() string {
	return e.Message
}

// Unwrap は元のトランスポートエラーを返します。
func (e *Error) Unwrap() error {
	return e.cause
}

// Is は Kind が一致する *Error 同士を同一視します。
// errors.Is(err, &apierr.Error{Kind: apierr.KindSafetyRejected}) のように使えます。
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New は分類とメッセージを指定してエラーを生成します。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap は元エラーを保持したままエラーを生成します。
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf は err に含まれる分類を返します。未分類なら KindUnknown です。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind は err が指定の分類かどうかを返します。
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// 利用者向けの定型メッセージなのだ。
const (
	msgMissingCredential = "API キーが見つかりません。設定で個人の API キーを入力するか、環境変数 GEMINI_API_KEY を設定してください。"
	msgInvalidCredential = "入力された API キーが無効です。キーを確認するか、既定のキーに戻してください。"
	msgQuotaGeneric      = "API の利用上限に達しました (Quota Exceeded)。トラフィックが多い時間帯によく起こります。時間をおいて再試行するか、設定で個人の API キーを使用してください。"
	msgSafetyRejected    = "安全性の理由で画像を生成できませんでした。レシピやポーズを変えて再試行してください。"
	msgEmptyResponse     = "API から有効な応答がありませんでした。画像候補が含まれていません。"
	msgNoImageNoText     = "応答は成功しましたが、画像データが見つかりませんでした。"
	msgMalformedResponse = "アシスタントの応答を解析できませんでした。もう一度送信してください。"
	msgUnknownFallback   = "Gemini API への接続に失敗しました。"
)

// MissingCredential は呼び出し側キーも既定キーも無い場合のエラーです。
func MissingCredential() *Error {
	return New(KindMissingCredential, msgMissingCredential)
}

// SafetyRejected は安全フィルターによる生成拒否です。
func SafetyRejected() *Error {
	return New(KindSafetyRejected, msgSafetyRejected)
}

// EmptyResponse は候補が1件も含まれない応答です。
func EmptyResponse() *Error {
	return New(KindEmptyResponse, msgEmptyResponse)
}

// NoImageReturned は画像の代わりにテキスト（または何も）返された場合です。
// explanation には API が返したテキストをそのまま保持します。
func NoImageReturned(explanation string) *Error {
	msg := msgNoImageNoText
	if explanation != "" {
		msg = fmt.Sprintf("API が画像を返しませんでした。メッセージ: %s", explanation)
	}
	return &Error{Kind: KindNoImageReturned, Message: msg, Explanation: explanation}
}

// MalformedResponse は構造化応答が期待スキーマに合致しない場合です。
func MalformedResponse(cause error) *Error {
	return Wrap(KindMalformedResponse, msgMalformedResponse, cause)
}

// Classify はトランスポート層の不透明なエラーを分類します。
// クォータ超過はエラー文面からの RetryInfo 抽出を試み、取れた場合だけ
// メッセージに待ち時間を織り込みます。抽出の失敗は分類を変えません。
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return already
	}

	msg := err.Error()

	if strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED") {
		hint := ExtractRetryHint(msg)
		friendly := msgQuotaGeneric
		if hint != "" {
			friendly = fmt.Sprintf("API の利用上限に達しました。サーバーは %s 後の再試行を推奨しています。設定で個人の API キーを使うと待ち時間を避けられます。", hint)
		}
		return &Error{Kind: KindQuotaExceeded, Message: friendly, RetryHint: hint, cause: err}
	}

	if strings.Contains(msg, "API key not valid") || strings.Contains(msg, "API_KEY_INVALID") {
		return Wrap(KindInvalidCredential, msgInvalidCredential, err)
	}

	if msg == "" {
		msg = msgUnknownFallback
	}
	return Wrap(KindUnknown, msg, err)
}
