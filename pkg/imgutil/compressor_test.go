package imgutil

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/shouni/nanobanana-kit/pkg/domain"
)

// テスト用のダミー画像を作成するヘルパー
func createDummyImageData(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		for y := 0; y < h; y += 7 {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
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

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode output image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected format jpeg, got %s", format)
	}
	return cfg.Width, cfg.Height
}

func TestNormalize(t *testing.T) {
	t.Run("3000x2000の入力が400バウンドで3:2を保って縮小されること", func(t *testing.T) {
		src := createDummyImageData(t, "jpeg", 3000, 2000)

		got, err := Normalize(src, 400, DefaultQuality)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		w, h := decodeDims(t, got)
		if w != 400 {
			t.Errorf("expected width 400, got %d", w)
		}
		if h < 266 || h > 267 {
			t.Errorf("expected height ~267 (3:2), got %d", h)
		}
	})

	t.Run("3000x2000の入力が1200バウンドで3:2を保って縮小されること", func(t *testing.T) {
		src := createDummyImageData(t, "jpeg", 3000, 2000)

		got, err := Normalize(src, 1200, DefaultQuality)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		w, h := decodeDims(t, got)
		if w != 1200 {
			t.Errorf("expected width 1200, got %d", w)
		}
		if h != 800 {
			t.Errorf("expected height 800, got %d", h)
		}
	})

	t.Run("バウンド内の画像は拡大されないこと", func(t *testing.T) {
		src := createDummyImageData(t, "png", 100, 50)

		got, err := Normalize(src, 400, DefaultQuality)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		w, h := decodeDims(t, got)
		if w != 100 || h != 50 {
			t.Errorf("expected 100x50 (no upscale), got %dx%d", w, h)
		}
	})

	t.Run("縦長画像は高さ側がバウンドされること", func(t *testing.T) {
		src := createDummyImageData(t, "png", 200, 800)

		got, err := Normalize(src, 400, DefaultQuality)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		w, h := decodeDims(t, got)
		if h != 400 {
			t.Errorf("expected height 400, got %d", h)
		}
		if w != 100 {
			t.Errorf("expected width 100, got %d", w)
		}
	})

	t.Run("不正なデータはErrDecodeとして報告されること", func(t *testing.T) {
		_, err := Normalize([]byte("this is not an image"), 400, DefaultQuality)
		if !errors.Is(err, domain.ErrDecode) {
			t.Errorf("expected ErrDecode, got %v", err)
		}
	})

	t.Run("同一入力に対して決定的であること", func(t *testing.T) {
		src := createDummyImageData(t, "png", 640, 480)

		a, err := Normalize(src, 400, DefaultQuality)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := Normalize(src, 400, DefaultQuality)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Error("expected identical output for identical input")
		}
	})
}

func TestCompressToJPEG(t *testing.T) {
	t.Run("正常なPNG画像をJPEGに圧縮できること", func(t *testing.T) {
		pngData := createDummyImageData(t, "png", 10, 10)

		got, err := CompressToJPEG(pngData, 75)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(got) == 0 {
			t.Error("expected output data, but got empty")
		}

		_, format, err := image.Decode(bytes.NewReader(got))
		if err != nil {
			t.Errorf("failed to decode output image: %v", err)
		}
		if format != "jpeg" {
			t.Errorf("expected format jpeg, got %s", format)
		}
	})

	t.Run("不正なデータを与えた場合にエラーを返すこと", func(t *testing.T) {
		_, err := CompressToJPEG([]byte("broken"), 75)
		if err == nil {
			t.Error("expected error for invalid data, but got nil")
		}
	})

	t.Run("寸法を変更しないこと", func(t *testing.T) {
		src := createDummyImageData(t, "png", 1500, 900)

		got, err := CompressToJPEG(src, 75)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		w, h := decodeDims(t, got)
		if w != 1500 || h != 900 {
			t.Errorf("expected 1500x900, got %dx%d", w, h)
		}
	})
}
