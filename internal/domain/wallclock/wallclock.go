// Package wallclock converts upstream wall-clock strings to seconds and back.
package wallclock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholder is rendered for absent or invalid durations.
const Placeholder = "--:--"

// Parse converts "H:M:S" into seconds since midnight. Every part must be one
// or two digits and within 0-23, 0-59, 0-59.
func Parse(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	limits := [3]int{23, 59, 59}
	var v [3]int
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return 0, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, false
		}
		v[i] = n
	}
	return v[0]*3600 + v[1]*60 + v[2], true
}

// FormatMMSS renders seconds as zero padded minutes and seconds. Minutes are
// not wrapped at the hour.
func FormatMMSS(seconds int, ok bool) string {
	if !ok || seconds < 0 {
		return Placeholder
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatAny accepts loosely typed input such as decoded JSON or query values.
func FormatAny(v any) string {
	switch x := v.(type) {
	case nil:
		return Placeholder
	case int:
		return FormatMMSS(x, true)
	case int64:
		return FormatMMSS(int(x), true)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Placeholder
		}
		return FormatMMSS(int(math.Floor(x)), true)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return Placeholder
		}
		return FormatAny(f)
	default:
		return Placeholder
	}
}
