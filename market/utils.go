package market

import (
	"fmt"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts RFC3339 as well as the naive layouts common in exported
// OHLCV files. Naive timestamps are taken as UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", s)
}

func SecondsToTFString(sec int32) (string, error) {
	if sec <= 0 {
		return "", fmt.Errorf("invalid timeframe seconds: %d", sec)
	}

	// Minutes
	if sec < 3600 && sec%60 == 0 {
		return fmt.Sprintf("M%d", sec/60), nil
	}

	// Hours
	if sec < 86400 && sec%3600 == 0 {
		return fmt.Sprintf("H%d", sec/3600), nil
	}

	// Days
	if sec%86400 == 0 {
		days := sec / 86400
		if days == 7 {
			return "W1", nil
		}
		return fmt.Sprintf("D%d", days), nil
	}

	return "", fmt.Errorf("cannot map timeframe: %d seconds", sec)
}

func TFStringToSeconds(tf string) (int32, error) {
	switch strings.ToUpper(tf) {
	case "M1":
		return 60, nil
	case "M5":
		return 300, nil
	case "M15":
		return 900, nil
	case "M30":
		return 1800, nil
	case "H1":
		return 3600, nil
	case "H4":
		return 14400, nil
	case "D1":
		return 86400, nil
	case "W1":
		return 604800, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe string: %s", tf)
	}
}

// PeriodsPerYear estimates how many bars of the given timeframe fit in a
// trading year: 252 sessions for daily and above, 24/7 for intraday.
func PeriodsPerYear(tf string) (float64, error) {
	sec, err := TFStringToSeconds(tf)
	if err != nil {
		return 0, err
	}
	switch {
	case sec >= 604800:
		return 52, nil
	case sec >= 86400:
		return 252, nil
	default:
		return float64(365*24*3600) / float64(sec), nil
	}
}
