package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/donorlens/schema"
)

// dateLayouts are tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	time.RFC3339,
}

// ParseDate parses a civil date in any supported layout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return schema.CivilDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseCurrency parses amounts like "$1,250.00" or "(40)" (negative).
func ParseCurrency(s string) (float64, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite amount %q", s)
	}
	if negative {
		v = -v
	}
	return v, nil
}

// ParseBool accepts yes/y/true/t/1/x and no/n/false/f/0 or blank.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1", "x":
		return true, nil
	case "no", "n", "false", "f", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("unrecognized boolean %q", s)
}
