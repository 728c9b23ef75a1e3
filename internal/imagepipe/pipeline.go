package imagepipe

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"pichasafi/internal/infra"
)

const (
	outputSize      = 1080
	jpegQuality     = 90
	maxProductRatio = 0.7

	// DefaultBackground is used when a user has no brand background color.
	DefaultBackground = "#1A1A2E"

	gradientDarkenFactor = 0.7
)

// Processor runs the product-photo enhancement pipeline: auto-enhance the
// product shot, render a brand-colored gradient backdrop, composite, and
// export a square JPEG. Background removal is deliberately absent; it needs
// more memory than the current hosting tier provides.
type Processor struct {
	logger *infra.Logger
}

// NewProcessor creates a Processor. logger may be nil.
func NewProcessor(logger *infra.Logger) *Processor {
	return &Processor{logger: logger}
}

// Enhance implements domain.Enhancer.
func (p *Processor) Enhance(ctx context.Context, imageBytes []byte, bgColorHex string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bgColorHex == "" {
		bgColorHex = DefaultBackground
	}
	top, err := ParseHex(bgColorHex)
	if err != nil {
		return nil, err
	}

	src, format, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("imagepipe: decode input: %w", err)
	}
	if p.logger != nil {
		p.logger.Debug().Str("format", format).
			Int("width", src.Bounds().Dx()).Int("height", src.Bounds().Dy()).
			Msg("product photo decoded")
	}

	product := autoEnhance(src)
	canvas := gradientBackground(outputSize, outputSize, top, top.Darken(gradientDarkenFactor))
	placeCentered(canvas, product)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("imagepipe: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// gradientBackground renders a vertical gradient from top to bottom color.
func gradientBackground(w, h int, top, bottom RGB) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		ratio := float64(y) / float64(h)
		r := uint8(float64(top.R) + (float64(bottom.R)-float64(top.R))*ratio)
		g := uint8(float64(top.G) + (float64(bottom.G)-float64(top.G))*ratio)
		b := uint8(float64(top.B) + (float64(bottom.B)-float64(top.B))*ratio)
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// placeCentered scales the product down to at most maxProductRatio of the
// canvas (never up) and composites it in the center.
func placeCentered(canvas *image.RGBA, product image.Image) {
	bounds := canvas.Bounds()
	maxW := int(float64(bounds.Dx()) * maxProductRatio)
	maxH := int(float64(bounds.Dy()) * maxProductRatio)

	pw := product.Bounds().Dx()
	ph := product.Bounds().Dy()
	if pw > maxW || ph > maxH {
		scale := float64(maxW) / float64(pw)
		if s := float64(maxH) / float64(ph); s < scale {
			scale = s
		}
		pw = int(float64(pw) * scale)
		ph = int(float64(ph) * scale)
		scaled := image.NewRGBA(image.Rect(0, 0, pw, ph))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), product, product.Bounds(), xdraw.Over, nil)
		product = scaled
	}

	x := (bounds.Dx() - pw) / 2
	y := (bounds.Dy() - ph) / 2
	target := image.Rect(x, y, x+pw, y+ph)
	xdraw.Draw(canvas, target, product, product.Bounds().Min, xdraw.Over)
}

// autoEnhance applies the fixed enhancement chain: sharpen, brightness +10%,
// contrast +15%, saturation +10%.
func autoEnhance(src image.Image) *image.RGBA {
	rgba := toRGBA(src)
	sharpened := sharpen(rgba)
	adjusted := image.NewRGBA(sharpened.Bounds())
	bounds := sharpened.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := sharpened.RGBAAt(x, y)
			r, g, b := float64(c.R), float64(c.G), float64(c.B)

			// brightness
			r *= 1.10
			g *= 1.10
			b *= 1.10

			// contrast around mid-gray
			r = (r-128)*1.15 + 128
			g = (g-128)*1.15 + 128
			b = (b-128)*1.15 + 128

			// saturation: push away from the pixel's luminance
			lum := 0.299*r + 0.587*g + 0.114*b
			r = lum + (r-lum)*1.10
			g = lum + (g-lum)*1.10
			b = lum + (b-lum)*1.10

			adjusted.SetRGBA(x, y, color.RGBA{
				R: clamp8(r),
				G: clamp8(g),
				B: clamp8(b),
				A: c.A,
			})
		}
	}
	return adjusted
}

// sharpen applies a 3x3 sharpening kernel, leaving the one-pixel border as-is.
func sharpen(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	xdraw.Copy(dst, bounds.Min, src, bounds, xdraw.Src, nil)

	kernel := [3][3]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}
	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var r, g, b float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					c := src.RGBAAt(x+kx, y+ky)
					k := kernel[ky+1][kx+1]
					r += float64(c.R) * k
					g += float64(c.G) * k
					b += float64(c.B) * k
				}
			}
			a := src.RGBAAt(x, y).A
			dst.SetRGBA(x, y, color.RGBA{R: clamp8(r), G: clamp8(g), B: clamp8(b), A: a})
		}
	}
	return dst
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Copy(rgba, image.Point{}, src, bounds, xdraw.Src, nil)
	return rgba
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
