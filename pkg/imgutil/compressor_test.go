package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// テスト用のダミー画像（64x64のノイズ入り正方形）を作成するヘルパー。
// 単色だと PNG が小さくなりすぎて上限超過のケースを作れないため、
// ピクセルごとに色を変えている。
func createDummyImageData(t *testing.T, format string, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 13), uint8((x + y) * 3), 255})
		}
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}

	if err != nil {
		t.Fatalf("failed to encode dummy image: %v", err)
	}
	return buf.Bytes()
}

func TestFitForUpload(t *testing.T) {
	t.Run("上限以下の画像はバイト列もMIMEも変わらないこと", func(t *testing.T) {
		pngData := createDummyImageData(t, "png", 16)

		got, mime, err := FitForUpload(pngData, "image/png", DefaultMaxInlineBytes, DefaultQuality)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(got, pngData) {
			t.Error("data should pass through unchanged when under the limit")
		}
		if mime != "image/png" {
			t.Errorf("expected mime image/png, got %s", mime)
		}
	})

	t.Run("上限超過のPNGはJPEGに再エンコードされること", func(t *testing.T) {
		pngData := createDummyImageData(t, "png", 64)

		got, mime, err := FitForUpload(pngData, "image/png", len(pngData)-1, 75)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mime != "image/jpeg" {
			t.Errorf("expected mime image/jpeg, got %s", mime)
		}

		_, format, err := image.Decode(bytes.NewReader(got))
		if err != nil {
			t.Fatalf("failed to decode output image: %v", err)
		}
		if format != "jpeg" {
			t.Errorf("expected format jpeg, got %s", format)
		}
	})

	t.Run("再エンコードしても上限を超える場合はエラーを返すこと", func(t *testing.T) {
		pngData := createDummyImageData(t, "png", 64)

		_, _, err := FitForUpload(pngData, "image/png", 10, 75)
		if err == nil {
			t.Error("expected error when compressed data still exceeds the limit")
		}
	})

	t.Run("上限超過かつ画像として壊れたデータはエラーを返すこと", func(t *testing.T) {
		invalidData := bytes.Repeat([]byte("not an image "), 100)

		_, _, err := FitForUpload(invalidData, "image/png", 10, 75)
		if err == nil {
			t.Error("expected error for invalid data, but got nil")
		}
	})
}

func TestCompressToJPEG(t *testing.T) {
	t.Run("Quality設定によってサイズが変化すること", func(t *testing.T) {
		input := createDummyImageData(t, "png", 64)

		highQuality, err := compressToJPEG(input, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lowQuality, err := compressToJPEG(input, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(lowQuality) >= len(highQuality) {
			t.Errorf("low quality size (%d) should be smaller than high quality size (%d)", len(lowQuality), len(highQuality))
		}
	})
}
