// Package duration parses the short ages accepted by "history prune":
// "12h", "7d", "4w" or "3m". Months are 30 days.
package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrFormat is returned for strings that are not a count followed by a unit.
var ErrFormat = errors.New("invalid duration")

var re = regexp.MustCompile(`^(\d+)([hdwm])$`)

const day = 24 * time.Hour

var units = map[string]time.Duration{
	"h": time.Hour,
	"d": day,
	"w": 7 * day,
	"m": 30 * day,
}

// Parse converts s to a time.Duration.
func Parse(s string) (time.Duration, error) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w %q (use 12h, 7d, 4w or 3m)", ErrFormat, s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrFormat, s, err)
	}
	return time.Duration(n) * units[m[2]], nil
}
