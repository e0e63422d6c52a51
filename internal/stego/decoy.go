package stego

import (
	"image"
	"image/color"

	"github.com/slasshy/slasshy/internal/primitives"
)

// GenerateDecoyCarrier produces an innocuous-looking RGBA PNG of the
// given dimensions, filled with a low-frequency gradient plus noise, for
// use as the carrier behind a decoy vault (duress mode).
func GenerateDecoyCarrier(width, height int) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	noise, err := primitives.RandomBytes(width * height * 3)
	if err != nil {
		return nil, err
	}

	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / maxInt(width-1, 1))
			g := uint8((y * 255) / maxInt(height-1, 1))
			b := uint8(128)

			r += noise[i] % 8
			g += noise[i+1] % 8
			b += noise[i+2] % 8
			i += 3

			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img, nil
}

// EmbedDecoy embeds decoyData into a freshly generated carrier, returning
// the resulting image ready to be saved alongside (or in place of) the
// real vault carrier.
func EmbedDecoy(width, height int, decoyData []byte) (*image.RGBA, Result, error) {
	carrier, err := GenerateDecoyCarrier(width, height)
	if err != nil {
		return nil, Result{}, err
	}
	return Embed(carrier, decoyData)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
