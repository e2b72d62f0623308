package ttml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Timestamp handling for timing attributes. Accepted forms are H:MM:SS.mmm,
// MM:SS.mmm and bare seconds; the canonical rendering is MM:SS.mmm (minutes
// are not wrapped into hours, matching the files in the wild).

// ParseTimestamp converts a timing attribute value to seconds. The second
// return value is false for values that do not parse; callers treat those the
// same as an absent attribute.
func ParseTimestamp(ts string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, false
	}
	var secs float64
	scale := []float64{1, 60, 3600}
	for i := 0; i < len(parts); i++ {
		v, err := strconv.ParseFloat(parts[len(parts)-1-i], 64)
		if err != nil {
			return 0, false
		}
		secs += v * scale[i]
	}
	return secs, true
}

// FormatTimestamp renders seconds in canonical MM:SS.mmm form with
// millisecond precision.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	// round first so 59.9996 does not format as 60.000 seconds
	ms := math.Round(seconds * 1000)
	minutes := int(ms) / 60000
	rem := ms - float64(minutes*60000)
	return fmt.Sprintf("%02d:%06.3f", minutes, rem/1000)
}
