// Package banner renders text as FIGlet ASCII art.
package banner

import (
	figure "github.com/common-nighthawk/go-figure"
)

// Font is the FIGlet font used for every banner.
const Font = "standard"

// Render returns label drawn in Font. Output is deterministic for a given
// label. Characters outside printable ASCII are fatal.
func Render(label string) string {
	return figure.NewFigure(label, Font, true).String()
}
