// Package texture resolves block texture references on disk and decodes them.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA errors.
var (
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA variant")
)

// TGA image types handled by DecodeTGA.
const (
	tgaTrueColor    = 2
	tgaGrayscale    = 3
	tgaTrueColorRLE = 10
	tgaGrayscaleRLE = 11

	tgaHeaderSize = 18
)

type tgaHeader struct {
	imageType   byte
	width       int
	height      int
	bpp         int
	topToBottom bool
	dataOffset  int
}

func (h tgaHeader) rle() bool {
	return h.imageType == tgaTrueColorRLE || h.imageType == tgaGrayscaleRLE
}

func (h tgaHeader) gray() bool {
	return h.imageType == tgaGrayscale || h.imageType == tgaGrayscaleRLE
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, fmt.Errorf("%w: %d byte header", ErrTGATruncated, len(data))
	}
	h := tgaHeader{
		imageType:   data[2],
		width:       int(data[12]) | int(data[13])<<8,
		height:      int(data[14]) | int(data[15])<<8,
		bpp:         int(data[16]),
		topToBottom: data[17]&0x20 != 0,
		dataOffset:  tgaHeaderSize + int(data[0]),
	}

	if data[1] != 0 {
		return h, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	switch h.imageType {
	case tgaTrueColor, tgaTrueColorRLE:
		if h.bpp != 24 && h.bpp != 32 {
			return h, fmt.Errorf("%w: %d-bit true-color", ErrTGAUnsupported, h.bpp)
		}
	case tgaGrayscale, tgaGrayscaleRLE:
		if h.bpp != 8 {
			return h, fmt.Errorf("%w: %d-bit grayscale", ErrTGAUnsupported, h.bpp)
		}
	default:
		return h, fmt.Errorf("%w: image type %d", ErrTGAUnsupported, h.imageType)
	}
	if h.dataOffset > len(data) {
		return h, ErrTGATruncated
	}
	return h, nil
}

// DecodeTGA decodes uncompressed or RLE TGA data in true-color or grayscale.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	w := tgaWriter{img: img, h: h, total: h.width * h.height}
	src := data[h.dataOffset:]
	stride := h.bpp / 8

	if !h.rle() {
		if len(src) < w.total*stride {
			return nil, fmt.Errorf("%w: pixel data", ErrTGATruncated)
		}
		for i := 0; i < w.total; i++ {
			w.put(h.pixel(src[i*stride:]))
		}
		return img, nil
	}

	for i := 0; w.n < w.total && i < len(src); {
		packet := src[i]
		i++
		count := int(packet&0x7f) + 1

		if packet&0x80 != 0 {
			if i+stride > len(src) {
				break
			}
			c := h.pixel(src[i:])
			i += stride
			for ; count > 0; count-- {
				w.put(c)
			}
			continue
		}
		for ; count > 0 && i+stride <= len(src); count-- {
			w.put(h.pixel(src[i:]))
			i += stride
		}
	}
	return img, nil
}

// pixel reads one BGR(A) or grayscale pixel.
func (h tgaHeader) pixel(p []byte) color.RGBA {
	if h.gray() {
		return color.RGBA{R: p[0], G: p[0], B: p[0], A: 255}
	}
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if h.bpp == 32 {
		c.A = p[3]
	}
	return c
}

// tgaWriter places pixels in file order, flipping rows for bottom-up images.
type tgaWriter struct {
	img   *image.RGBA
	h     tgaHeader
	n     int
	total int
}

func (w *tgaWriter) put(c color.RGBA) {
	if w.n >= w.total {
		return
	}
	x, y := w.n%w.h.width, w.n/w.h.width
	if !w.h.topToBottom {
		y = w.h.height - 1 - y
	}
	w.img.SetRGBA(x, y, c)
	w.n++
}
