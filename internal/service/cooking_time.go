package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPart = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-z]*)`)

// maxCookingMinutes bounds parsed durations to thirty days
const maxCookingMinutes = 30 * 24 * 60

// ParseCookingMinutes turns a free-text duration such as "20 mins",
// "1 hr 15 min" or "1h30m" into whole minutes. A bare number is minutes.
// Anything else returns ErrInvalidInput.
func ParseCookingMinutes(s string) (int, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return 0, fmt.Errorf("empty cooking time: %w", ErrInvalidInput)
	}
	if d, err := time.ParseDuration(text); err == nil && d > 0 {
		return boundedMinutes(s, d.Minutes())
	}

	matches := durationPart.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("cooking time %q: %w", s, ErrInvalidInput)
	}

	var total float64
	consumed := 0
	for _, m := range matches {
		// only separators may sit between parts
		if !separatorOnly(text[consumed:m[0]]) {
			return 0, fmt.Errorf("cooking time %q: %w", s, ErrInvalidInput)
		}
		consumed = m[1]

		n, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err != nil {
			return 0, fmt.Errorf("cooking time %q: %w", s, ErrInvalidInput)
		}
		switch unit := text[m[4]:m[5]]; unit {
		case "", "m", "min", "mins", "minute", "minutes":
			total += n
		case "h", "hr", "hrs", "hour", "hours":
			total += n * 60
		default:
			return 0, fmt.Errorf("cooking time %q: unknown unit %q: %w", s, unit, ErrInvalidInput)
		}
	}
	if rest := strings.TrimSpace(text[consumed:]); rest != "" {
		return 0, fmt.Errorf("cooking time %q: %w", s, ErrInvalidInput)
	}
	return boundedMinutes(s, total)
}

func boundedMinutes(s string, minutes float64) (int, error) {
	if minutes <= 0 || minutes > maxCookingMinutes {
		return 0, fmt.Errorf("cooking time %q out of range: %w", s, ErrInvalidInput)
	}
	return int(math.Round(minutes)), nil
}

// separatorOnly reports whether every comma- or space-separated word in gap
// is "and"
func separatorOnly(gap string) bool {
	words := strings.FieldsFunc(gap, func(r rune) bool { return r == ' ' || r == ',' })
	for _, w := range words {
		if w != "and" {
			return false
		}
	}
	return true
}
