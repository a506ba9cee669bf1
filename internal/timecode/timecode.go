// Package timecode converts between seconds and the MM:SS.mmm strings typed
// into the annotation forms.
package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/sitelabel/annotator/internal/errors"
)

// minutes:seconds with an optional 1-3 digit millisecond part
var pattern = regexp.MustCompile(`^(\d+):(\d+)(?:\.(\d{1,3}))?$`)

// Parse converts "MM:SS.mmm" to seconds. The millisecond part is read as an
// integer count of milliseconds, so "0:01.5" is 1.005s. Seconds above 59 are
// accepted as-is; only the shape of the string is checked.
func Parse(text string) (float64, error) {
	matches := pattern.FindStringSubmatch(strings.TrimSpace(text))
	if matches == nil {
		return 0, apperrors.ParseError(text)
	}

	minutes, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, apperrors.ParseError(text)
	}
	seconds, err := strconv.ParseInt(matches[2], 10, 64)
	if err != nil {
		return 0, apperrors.ParseError(text)
	}

	var millis int64
	if matches[3] != "" {
		millis, _ = strconv.ParseInt(matches[3], 10, 64)
	}

	total := (minutes*60+seconds)*1000 + millis
	return float64(total) / 1000, nil
}

// Format renders seconds as zero-padded "MM:SS.mmm", dropping anything below a
// millisecond. Negative input renders as zero.
func Format(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return "00:00.000"
	}

	ms := seconds * 1000
	total := int64(math.Floor(ms))
	// a whole millisecond can land a few ulps below its integer, as values
	// from Parse do; anything further below is truncated
	if next := float64(total + 1); next-ms < ms*1e-12 {
		total++
	}
	minutes := total / 60000
	secs := (total / 1000) % 60
	millis := total % 1000

	return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, millis)
}

// Human renders a long duration as "2d 3h 4m 5s", omitting leading zero units.
// Used for footage totals, where MM:SS would overflow.
func Human(seconds float64) string {
	total := int64(seconds)
	if total < 0 {
		total = 0
	}

	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, secs)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}
