package ascii

import (
	"strings"

	"github.com/common-nighthawk/go-figure"
)

// Banner renders text as a FIGlet banner. It never fails: unknown fonts fall
// back to the standard font, and text the font cannot render is returned
// as-is.
func (c *Converter) Banner(text string) string {
	out := figure.NewFigure(text, c.font, false).String()
	if strings.TrimSpace(out) == "" {
		return text
	}
	return out
}
