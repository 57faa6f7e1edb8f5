package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/shouni/nanobanana-kit/pkg/domain"

	xdraw "golang.org/x/image/draw"
)

// DefaultQuality は再エンコード時の固定品質係数（0.7相当）です。
const DefaultQuality = 70

// Normalize は画像データ（PNG, GIF, JPEG等）をデコードし、長辺が
// maxDimension を超える場合のみアスペクト比を保ったまま縮小して、
// JPEG形式へ再エンコードします。拡大は行いません。
// 入力と品質のみに依存する決定的な純関数です。
func Normalize(data []byte, maxDimension, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	img = scaleToFit(img, maxDimension)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("JPEGエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// CompressToJPEG は寸法を変えずにJPEG形式へ圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scaleToFit は長辺を maxDimension に収めます。収まっている場合はそのままです。
func scaleToFit(img image.Image, maxDimension int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDimension <= 0 || (w <= maxDimension && h <= maxDimension) {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = maxDimension
		nh = (h*maxDimension + w/2) / w
	} else {
		nh = maxDimension
		nw = (w*maxDimension + h/2) / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
