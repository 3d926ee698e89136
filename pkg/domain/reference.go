package domain

import "sync"

// ReferenceImage はアップロードされた参照画像1枚を表します。
// 顔参照は顔の骨格のみ、スタイル参照は質感とパレットのみを拘束する、
// という役割の違いはプロンプト側（pkg/prompts）で表現されます。
type ReferenceImage struct {
	Name     string
	MIMEType string
	Data     []byte

	releaseOnce sync.Once
	release     func()
}

// NewReferenceImage は参照画像を生成します。release にはプレビュー用リソース
// （一時ファイル等）の解放処理を渡します。不要なら nil でよいのだ。
func NewReferenceImage(name, mimeType string, data []byte, release func()) *ReferenceImage {
	return &ReferenceImage{
		Name:     name,
		MIMEType: mimeType,
		Data:     data,
		release:  release,
	}
}

// Release はプレビューハンドルを解放します。何度呼んでも解放は一度だけです。
// 差し替え・削除・送信完了のすべての経路で呼ばれる契約です。
func (r *ReferenceImage) Release() {
	if r == nil {
		return
	}
	r.releaseOnce.Do(func() {
		if r.release != nil {
			r.release()
		}
	})
}
