package outwriter

import (
	"os"

	"github.com/huangsam/foilact/internal/contract"
	"golang.org/x/term"
)

// Bounds of the report source column.
const (
	minSourceWidth = 15
	maxSourceWidth = 70
)

// GetMaxSourceWidth calculates the maximum width for report paths in table output
// based on terminal width and the fixed columns of the report table.
func GetMaxSourceWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Target + Detector + Level + Acquired + Live + Real + Peaks with borders/padding
	baseWidth := 95

	available := termWidth - baseWidth
	if available < minSourceWidth {
		return minSourceWidth
	}
	if available > maxSourceWidth {
		return maxSourceWidth
	}
	return available
}
