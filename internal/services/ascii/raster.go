package ascii

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	rasterPadding = 4
	rasterLineGap = 2
)

// RasterizeToFile renders an ascii text block onto a white PNG and writes it
// into the cache dir under a content-derived name. Identical text reuses the
// existing file; entries are immutable and never evicted.
func (c *Converter) RasterizeToFile(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("text to rasterize is empty")
	}

	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	sum := sha256.Sum256([]byte(text))
	name := "ascii_" + hex.EncodeToString(sum[:])[:16] + ".png"
	path := filepath.Join(c.cacheDir, name)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	lines := strings.Split(text, "\n")
	face := basicfont.Face7x13

	maxLen := 0
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}
	if maxLen == 0 {
		maxLen = 1
	}

	lineH := face.Height + rasterLineGap
	imgW := maxLen*face.Advance + 2*rasterPadding
	imgH := len(lines)*lineH + 2*rasterPadding

	img := image.NewRGBA(image.Rect(0, 0, imgW, imgH))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(rasterPadding, rasterPadding+face.Ascent+i*lineH)
		drawer.DrawString(line)
	}

	// Encode into a temp file and rename into place, so a failed write never
	// leaves a truncated PNG behind the content-addressed fast path.
	tmp, err := os.CreateTemp(c.cacheDir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create render file: %w", err)
	}

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("encode render png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close render file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("publish render file: %w", err)
	}

	return path, nil
}
