package ascii

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// charset is ordered dark to light; pixel luminance picks the index.
var charset = []byte{'@', '#', 'S', '%', '?', '*', '+', ';', ':', ',', '.'}

// charAspect compensates for terminal glyphs being taller than wide.
const charAspect = 0.55

// ImageToText samples image bytes into a newline-delimited character grid of
// the configured width.
func (c *Converter) ImageToText(imageBytes []byte) (string, error) {
	if len(imageBytes) == 0 {
		return "", fmt.Errorf("image payload is empty")
	}

	src, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return "", fmt.Errorf("image has no pixels")
	}

	outW := c.sampleWidth
	outH := int(float64(srcH) / float64(srcW) * float64(outW) * charAspect)
	if outH < 1 {
		outH = 1
	}

	gray := image.NewGray(image.Rect(0, 0, outW, outH))
	xdraw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, bounds, xdraw.Src, nil)

	var b strings.Builder
	b.Grow(outH * (outW + 1))
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			p := gray.GrayAt(x, y).Y
			idx := int(p) * (len(charset) - 1) / 255
			b.WriteByte(charset[idx])
		}
		if y < outH-1 {
			b.WriteByte('\n')
		}
	}

	return b.String(), nil
}
