package apierr

import (
	"encoding/json"
	"strings"
)

// API のエラー文面には google.rpc の構造化エラーが JSON でそのまま埋め込まれて
// いることが多い。その中の RetryInfo から推奨待ち時間を拾うための型です。
const retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"

type embeddedAPIError struct {
	Error struct {
		Details []map[string]any `json:"details"`
	} `json:"error"`
}

// ExtractRetryHint はエラー文面に埋め込まれた JSON から RetryInfo の
// retryDelay（例: "37s"）をベストエフォートで抽出します。
// 解析できない場合は空文字を返すだけで、それ自体が失敗することはありません。
func ExtractRetryHint(message string) string {
	start := strings.Index(message, "{")
	if start < 0 {
		return ""
	}

	var parsed embeddedAPIError
	if err := json.Unmarshal([]byte(message[start:]), &parsed); err != nil {
		return ""
	}

	for _, detail := range parsed.Error.Details {
		if detail["@type"] != retryInfoType {
			continue
		}
		if delay, ok := detail["retryDelay"].(string); ok {
			return delay
		}
	}
	return ""
}
