package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/donorlens/schema"
)

// Lapsed label constants.
const (
	LapsedValue = "Lapsed"
	ActiveValue = "Active"
)

// Color variables for console output.
var (
	MajorColor   = color.New(color.FgMagenta, color.Bold) // MajorColor marks the major tier.
	MidColor     = color.New(color.FgYellow)              // MidColor marks the mid tier.
	SmallColor   = color.New(color.FgCyan)                // SmallColor marks the small tier.
	LapsedColor  = color.New(color.FgRed, color.Bold)     // LapsedColor marks lapsed donors.
	OverdueColor = color.New(color.FgRed)                 // OverdueColor marks overdue pledges.
)

// GetPlainTierLabel returns the display label for a tier, used in CSV, JSON and tables.
func GetPlainTierLabel(tier schema.Tier) string {
	switch tier {
	case schema.MajorTier:
		return "Major"
	case schema.MidTier:
		return "Mid"
	default:
		return "Small"
	}
}

// GetColorTierLabel returns a colored tier label for console output (table).
func GetColorTierLabel(tier schema.Tier) string {
	text := GetPlainTierLabel(tier)
	switch tier {
	case schema.MajorTier:
		return MajorColor.Sprint(text)
	case schema.MidTier:
		return MidColor.Sprint(text)
	default:
		return SmallColor.Sprint(text)
	}
}

// GetPlainLapsedLabel returns "Lapsed" or "Active".
func GetPlainLapsedLabel(lapsed bool) string {
	if lapsed {
		return LapsedValue
	}
	return ActiveValue
}

// GetColorLapsedLabel returns a colored lapsed label for console output (table).
func GetColorLapsedLabel(lapsed bool) string {
	if lapsed {
		return LapsedColor.Sprint(LapsedValue)
	}
	return ActiveValue
}

// SelectOutputFile returns the appropriate file handle for output.
// An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the ingest cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".donorlens_cache.db"
	}
	return filepath.Join(homeDir, ".donorlens_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for report history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".donorlens_history.db"
	}
	return filepath.Join(homeDir, ".donorlens_history.db")
}

// TruncateName truncates a donor name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
