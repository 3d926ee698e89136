// Package imgutil は、参照画像をインライン送信できるサイズに収めるための
// 再エンコード処理を提供します。
package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// DefaultMaxInlineBytes はインライン送信を許す既定の上限サイズです。
const DefaultMaxInlineBytes = 4 << 20

// DefaultQuality は再エンコード時の既定 JPEG 品質です。
const DefaultQuality = 85

// FitForUpload は画像データをインライン送信の上限以下に収めます。
// 上限以下ならそのまま返し、超える場合のみ JPEG に再エンコードします。
// 再エンコードした場合、返り値の MIME タイプは image/jpeg になります。
func FitForUpload(data []byte, mimeType string, maxBytes, quality int) ([]byte, string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInlineBytes
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	if len(data) <= maxBytes {
		return data, mimeType, nil
	}

	compressed, err := compressToJPEG(data, quality)
	if err != nil {
		return nil, "", fmt.Errorf("参照画像の再エンコードに失敗しました: %w", err)
	}
	if len(compressed) > maxBytes {
		return nil, "", fmt.Errorf("参照画像が大きすぎます (再エンコード後 %d bytes, 上限 %d bytes)", len(compressed), maxBytes)
	}
	return compressed, "image/jpeg", nil
}

// compressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func compressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
