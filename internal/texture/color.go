package texture

import (
	"hash/fnv"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Magenta marks missing textures and unknown block types.
var Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}

// minChannel keeps fallback colours from getting too dark to read in a viewport.
const minChannel = 0.3

// FallbackColor derives a stable colour from a block name. The same name always
// yields the same colour, across runs and machines.
func FallbackColor(name string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	sum := h.Sum32()

	hue := float64(sum % 360)
	sat := 0.45 + float64((sum>>9)%40)/100
	val := 0.65 + float64((sum>>17)%30)/100

	c := colorful.Hsv(hue, sat, val)
	c = colorful.Color{
		R: math.Max(minChannel, c.R),
		G: math.Max(minChannel, c.G),
		B: math.Max(minChannel, c.B),
	}.Clamped()

	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Swatch returns a size×size image filled with c.
func Swatch(c color.RGBA, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}
