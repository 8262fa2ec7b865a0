//go:build tesseract

package tesseract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/infra/ocr"
)

// ensureTesseractAvailable skips when tesseract is not installed.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

// labelPNG renders text in black on white, enlarged so the 7x13 face is
// legible to the recognizer.
func labelPNG(t *testing.T, text string) []byte {
	t.Helper()

	small := image.NewRGBA(image.Rect(0, 0, 10+7*len(text), 30))
	draw.Draw(small, small.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if text != "" {
		d := &font.Drawer{
			Dst:  small,
			Src:  image.Black,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(5, 20),
		}
		d.DrawString(text)
	}

	const scale = 4
	big := image.NewRGBA(image.Rect(0, 0, small.Bounds().Dx()*scale, small.Bounds().Dy()*scale))
	draw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, big); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEngine_ExtractSplitsIngredientLine(t *testing.T) {
	ensureTesseractAvailable(t)

	e := NewEngine(ocr.EngineConfig{})
	names, meta, err := e.Extract(context.Background(), labelPNG(t, "Ingredients: Water, Glycerin"), "en")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %q", names)
	}
	if !strings.EqualFold(names[0], "water") || !strings.EqualFold(names[1], "glycerin") {
		t.Errorf("unexpected OCR output: %q", names)
	}
	if !meta.UsedFallbackParsing {
		t.Errorf("plain text output must be marked as fallback parsing")
	}
	if meta.Provider != "tesseract" || meta.Latency <= 0 {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestEngine_BlankImageHasNoText(t *testing.T) {
	ensureTesseractAvailable(t)

	e := NewEngine(ocr.EngineConfig{Name: "local"})
	_, _, err := e.Extract(context.Background(), labelPNG(t, ""), "")
	if !errors.Is(err, domain.ErrNoTextDetected) {
		t.Fatalf("expected ErrNoTextDetected, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "local:") {
		t.Errorf("expected engine name in error, got %v", err)
	}
}

func TestEngine_RejectsInvalidImage(t *testing.T) {
	e := NewEngine(ocr.EngineConfig{})
	_, _, err := e.Extract(context.Background(), []byte("not an image"), "en")
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestEngine_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(ocr.EngineConfig{})
	_, _, err := e.Extract(ctx, labelPNG(t, "Water"), "en")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEngine_Registered(t *testing.T) {
	ex, err := ocr.NewEngine("tesseract", ocr.EngineConfig{Name: "local"})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if ex.Name() != "local" {
		t.Errorf("expected name local, got %s", ex.Name())
	}
}
