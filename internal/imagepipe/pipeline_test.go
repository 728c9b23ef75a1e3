package imagepipe

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func samplePNG(t *testing.T, w, h int, fill color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	return buf.Bytes()
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#FF6B00")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if c.R != 0xFF || c.G != 0x6B || c.B != 0x00 {
		t.Fatalf("parsed %+v", c)
	}

	if _, err := ParseHex("#GGGGGG"); err == nil {
		t.Fatal("expected error for non-hex digits")
	}
	if _, err := ParseHex("#FFF"); err == nil {
		t.Fatal("expected error for short code")
	}
}

func TestDarken(t *testing.T) {
	c := RGB{R: 200, G: 100, B: 50}
	d := c.Darken(0.5)
	if d.R != 100 || d.G != 50 || d.B != 25 {
		t.Fatalf("darkened %+v", d)
	}
	if got := (RGB{R: 26, G: 26, B: 46}).Darken(0.7).Hex(); got != "#121220" {
		t.Fatalf("default bottom = %s", got)
	}
}

func TestGradientBackgroundEndpoints(t *testing.T) {
	top := RGB{R: 26, G: 26, B: 46}
	bottom := top.Darken(0.7)
	img := gradientBackground(64, 64, top, bottom)

	first := img.RGBAAt(0, 0)
	if first.R != top.R || first.G != top.G || first.B != top.B {
		t.Fatalf("top row = %+v, want %+v", first, top)
	}

	last := img.RGBAAt(0, 63)
	if last.R > top.R || last.B > top.B {
		t.Fatalf("bottom row %+v should be darker than top %+v", last, top)
	}
	// The final row sits one step shy of the bottom color; it must be close.
	if int(last.R)-int(bottom.R) > 2 {
		t.Fatalf("bottom row R = %d, want close to %d", last.R, bottom.R)
	}
}

func TestEnhanceProducesSquareJPEG(t *testing.T) {
	p := NewProcessor(nil)
	input := samplePNG(t, 400, 300, color.RGBA{R: 180, G: 40, B: 40, A: 255})

	out, err := p.Enhance(context.Background(), input, "#FF6B00")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}

	decoded, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("format = %q, want jpeg", format)
	}
	if decoded.Bounds().Dx() != 1080 || decoded.Bounds().Dy() != 1080 {
		t.Fatalf("output size = %dx%d, want 1080x1080", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestEnhanceDefaultsBackground(t *testing.T) {
	p := NewProcessor(nil)
	input := samplePNG(t, 32, 32, color.RGBA{R: 10, G: 200, B: 10, A: 255})

	out, err := p.Enhance(context.Background(), input, "")
	if err != nil {
		t.Fatalf("Enhance with empty color: %v", err)
	}

	decoded, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	// Corner pixels belong to the gradient; with the default background the
	// top corner is near #1A1A2E.
	r, g, b, _ := decoded.At(0, 0).RGBA()
	if r>>8 > 40 || g>>8 > 40 || b>>8 > 70 {
		t.Fatalf("corner = (%d,%d,%d), want dark default background", r>>8, g>>8, b>>8)
	}
}

func TestEnhanceSmallProductNotUpscaled(t *testing.T) {
	p := NewProcessor(nil)
	input := samplePNG(t, 50, 50, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out, err := p.Enhance(context.Background(), input, "#0066FF")
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	decoded, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	// A 50px product on a 1080px canvas stays 50px; a pixel 100px from the
	// center must still be gradient, not product.
	r, g, b, _ := decoded.At(540, 540-100).RGBA()
	if r>>8 > 150 && g>>8 > 150 && b>>8 > 150 {
		t.Fatalf("pixel outside small product looks like product: (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestEnhanceRejectsMalformedInput(t *testing.T) {
	p := NewProcessor(nil)
	if _, err := p.Enhance(context.Background(), []byte("not an image"), "#FF6B00"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEnhanceRejectsBadColor(t *testing.T) {
	p := NewProcessor(nil)
	input := samplePNG(t, 8, 8, color.RGBA{A: 255})
	if _, err := p.Enhance(context.Background(), input, "notacolor"); err == nil {
		t.Fatal("expected color parse error")
	}
}
