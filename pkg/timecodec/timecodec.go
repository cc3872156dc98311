package timecodec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	componentsSeparator = ":"
	fractionSeparator   = "."

	millisecondsInMinute = 60_000
	millisecondsInSecond = 1_000
)

// Parse interprets human-readable time text as seconds.
// Three forms are accepted, tried in order: "MM:SS.fff", "MM:SS" and "SS[.fff]".
// The fractional part may have any number of digits - its value is digits divided by 10^(digit count).
// Second return value reports whether the text matched any of the forms; on mismatch
// (empty text, stray whitespace, negative signs, more than one colon etc.) callers
// are expected to keep their previous value.
func Parse(text string) (float64, bool) {
	components := strings.Split(text, componentsSeparator)
	if len(components) > 2 {
		return 0, false
	}

	var minutes int
	secondsComponent := components[0]
	if len(components) == 2 {
		parsedMinutes, ok := parseIntegerComponent(components[0])
		if !ok {
			return 0, false
		}

		minutes = parsedMinutes
		secondsComponent = components[1]
	}

	seconds, fraction, ok := parseSecondsComponent(secondsComponent)
	if !ok {
		return 0, false
	}

	return float64(minutes)*60 + float64(seconds) + fraction, true
}

// Format renders seconds as "MM:SS.mmm" with fixed-width zero padding.
// Values with at most 3 fractional digits round-trip through Parse without
// changing the displayed value. Negative input is rendered as zero.
func Format(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	totalMilliseconds := int64(math.Round(seconds * millisecondsInSecond))
	minutes := totalMilliseconds / millisecondsInMinute
	rest := totalMilliseconds % millisecondsInMinute

	return fmt.Sprintf("%02d:%02d.%03d", minutes, rest/millisecondsInSecond, rest%millisecondsInSecond)
}

func parseSecondsComponent(component string) (int, float64, bool) {
	integer, fractionDigits, hasFraction := strings.Cut(component, fractionSeparator)

	seconds, ok := parseIntegerComponent(integer)
	if !ok {
		return 0, 0, false
	}

	if !hasFraction {
		return seconds, 0, true
	}

	fraction, ok := parseFractionDigits(fractionDigits)
	if !ok {
		return 0, 0, false
	}

	return seconds, fraction, true
}

func parseIntegerComponent(component string) (int, bool) {
	if !allDigits(component) {
		return 0, false
	}

	value, err := strconv.Atoi(component)
	if err != nil {
		return 0, false
	}

	return value, true
}

// parseFractionDigits accumulates digits left to right so that any digit count
// is handled without integer overflow.
func parseFractionDigits(digits string) (float64, bool) {
	if !allDigits(digits) {
		return 0, false
	}

	var fraction float64
	scale := 1.0
	for _, digit := range digits {
		scale /= 10
		fraction += float64(digit-'0') * scale
	}

	return fraction, true
}

func allDigits(text string) bool {
	if len(text) == 0 {
		return false
	}

	for _, char := range text {
		if char < '0' || char > '9' {
			return false
		}
	}

	return true
}
