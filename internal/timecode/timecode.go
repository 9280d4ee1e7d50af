// Package timecode converts between MM:SS video offsets and seconds.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts "MM:SS" into total seconds (minutes*60 + seconds).
// Minutes may be unpadded; seconds must be 0-59.
func Parse(ts string) (int, error) {
	mm, ss, ok := strings.Cut(strings.TrimSpace(ts), ":")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q: missing ':'", ts)
	}
	if !digits(mm) {
		return 0, fmt.Errorf("invalid timestamp %q: bad minutes", ts)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: bad minutes", ts)
	}
	if len(ss) == 0 || len(ss) > 2 || !digits(ss) {
		return 0, fmt.Errorf("invalid timestamp %q: bad seconds", ts)
	}
	seconds, err := strconv.Atoi(ss)
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("invalid timestamp %q: bad seconds", ts)
	}
	return minutes*60 + seconds, nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Format renders seconds as zero-padded "MM:SS". Negative input renders as 00:00.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Clock renders a playback position as "M:SS", truncating fractional seconds.
func Clock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	whole := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
