package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

const (
	DefaultMaxDimension = 1536
	DefaultJPEGQuality  = 85
	// DefaultMaxPixels bounds the decoded size of an upload. A small
	// compressed file can declare a huge canvas.
	DefaultMaxPixels = 40_000_000
)

// Preprocess decodes image, scales it so neither side exceeds maxDimension
// and re-encodes it as JPEG. Undecodable input and images whose header
// declares more than maxPixels pixels are domain.ErrInvalidImage.
func Preprocess(data []byte, maxDimension, maxPixels, quality int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrInvalidImage)
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	// Check the declared size before decoding allocates the pixel buffer.
	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	if int64(header.Width)*int64(header.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", domain.ErrInvalidImage, header.Width, header.Height, maxPixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", domain.ErrInvalidImage)
	}

	w, h := scaledSize(b.Dx(), b.Dy(), maxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := encodeJPEG(&buf, dst, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("%w: encode jpeg: %w", domain.ErrInvalidImage, err)
	}
	return nil
}

// scaledSize keeps the aspect ratio and never upscales.
func scaledSize(w, h, maxDim int) (int, int) {
	if w <= maxDim && h <= maxDim {
		return w, h
	}
	if w >= h {
		nh := h * maxDim / w
		if nh < 1 {
			nh = 1
		}
		return maxDim, nh
	}
	nw := w * maxDim / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxDim
}
