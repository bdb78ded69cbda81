package outwriter

import (
	"os"

	"github.com/huangsam/donorlens/internal/contract"
	"golang.org/x/term"
)

// Name column bounds for table output.
const (
	minNameWidth = 12
	maxNameWidth = 40
)

// GetMaxTableNameWidth calculates the maximum width for donor names in table output
// based on terminal width and the space taken by the other columns.
func GetMaxTableNameWidth(cfg *contract.Config, reserved int) int {
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

	// Table borders, separators and padding
	available := termWidth - reserved - 10
	if available < minNameWidth {
		return minNameWidth
	}
	if available > maxNameWidth {
		return maxNameWidth
	}
	return available
}
