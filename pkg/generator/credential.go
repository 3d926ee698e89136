package generator

import (
	"strings"

	"github.com/shouni/gemini-character-kit/pkg/apierr"
)

// ResolveCredential は実効 API キーを決定します。優先順位は
// 呼び出し側指定キー → 既定キー（環境変数由来）です。
// どちらも無い場合は MissingCredential を返し、ネットワークには触れません。
// 暗黙のグローバル参照を避けるため、既定キーも引数で受け取ります。
func ResolveCredential(custom, fallback string) (string, error) {
	if key := strings.TrimSpace(custom); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(fallback); key != "" {
		return key, nil
	}
	return "", apierr.MissingCredential()
}
