package schema

import (
	"errors"
	"fmt"
	"time"
)

// Default settings.
const (
	DefaultLapsedDays     = 365
	DefaultRecentDays     = 90
	DefaultMajorThreshold = 10000.0
	DefaultMidThreshold   = 1000.0
	DefaultAckDays        = 7
	DefaultTopN           = 5
	DefaultQueueSize      = 10
)

// ErrInvalidSettings is wrapped by every Settings.Validate failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the knobs every calculator reads. They are immutable once a report starts.
type Settings struct {
	AsOf           time.Time `json:"as_of"`
	LapsedDays     int       `json:"lapsed_days"`
	RecentDays     int       `json:"recent_days"`
	MajorThreshold float64   `json:"major_threshold"`
	MidThreshold   float64   `json:"mid_threshold"`
	AckDays        int       `json:"ack_days"`
	TopN           int       `json:"top_n"`
	QueueSize      int       `json:"queue_size"`
}

// DefaultSettings returns the default settings anchored at asOf.
func DefaultSettings(asOf time.Time) Settings {
	return Settings{
		AsOf:           CivilDate(asOf),
		LapsedDays:     DefaultLapsedDays,
		RecentDays:     DefaultRecentDays,
		MajorThreshold: DefaultMajorThreshold,
		MidThreshold:   DefaultMidThreshold,
		AckDays:        DefaultAckDays,
		TopN:           DefaultTopN,
		QueueSize:      DefaultQueueSize,
	}
}

// Validate reports malformed settings.
func (s Settings) Validate() error {
	if s.AsOf.IsZero() {
		return fmt.Errorf("%w: as-of date is required", ErrInvalidSettings)
	}
	if s.MajorThreshold < 0 || s.MidThreshold < 0 {
		return fmt.Errorf("%w: thresholds must be non-negative", ErrInvalidSettings)
	}
	if s.MidThreshold >= s.MajorThreshold {
		return fmt.Errorf("%w: mid threshold (%.2f) must be below major threshold (%.2f)",
			ErrInvalidSettings, s.MidThreshold, s.MajorThreshold)
	}
	positives := []struct {
		name  string
		value int
	}{
		{"lapsed days", s.LapsedDays},
		{"recent days", s.RecentDays},
		{"ack days", s.AckDays},
		{"top n", s.TopN},
		{"queue size", s.QueueSize},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidSettings, p.name, p.value)
		}
	}
	return nil
}
