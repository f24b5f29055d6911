package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned for data that is not a known image format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decode sniffs the content type of data and decodes it to RGBA.
// name is only used for the TGA fallback, which has no magic number.
func Decode(data []byte, name string) (*image.RGBA, error) {
	kind, _ := filetype.Match(data)
	switch kind.Extension {
	case "png", "jpg", "bmp", "gif":
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding %s as %s: %w", name, kind.Extension, err)
		}
		return clone.AsRGBA(img), nil
	}

	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, name, kind.MIME.Value)
}
