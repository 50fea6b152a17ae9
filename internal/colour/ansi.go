package colour

import (
	"fmt"
	"strings"
)

// ANSI escape codes for 24-bit terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	defaultWidth = 2
)

// Block returns a solid ANSI-coloured block for a colour. Width is the block
// width in characters.
func Block(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	bg := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bg + strings.Repeat(" ", width) + ansiReset
}

// Swatch returns a colour block with its hex code overlaid. The text is black
// or white, whichever contrasts better with the block's luminance.
func Swatch(c RGB, width int) string {
	text := c.Hex()
	if width < len(text) {
		width = len(text)
	}

	fg := RGB{}
	if Luminance(c) < 0.5 {
		fg = RGB{R: 255, G: 255, B: 255}
	}

	bg := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	fgSeq := fmt.Sprintf("%s%d;%d;%d%s", ansiFgPrefix, fg.R, fg.G, fg.B, ansiSuffix)
	return bg + fgSeq + text + strings.Repeat(" ", width-len(text)) + ansiReset
}
