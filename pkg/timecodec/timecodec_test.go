package timecodec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarpt/loop-web-api/pkg/timecodec"
)

func TestParse_AcceptedForms(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		text     string
		expected float64
	}{
		{text: "00:00.000", expected: 0},
		{text: "01:05.500", expected: 65.5},
		{text: "1:05.5", expected: 65.5},
		{text: "1:5", expected: 65},
		{text: "05:30", expected: 330},
		{text: "90", expected: 90},
		{text: "90.25", expected: 90.25},
		{text: "0.125", expected: 0.125},
		{text: "2:00.0001", expected: 120.0001},
		{text: "61:05.500", expected: 3665.5},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.text, func(t *testing.T) {
			t.Parallel()

			seconds, ok := timecodec.Parse(testCase.text)
			require.True(t, ok)
			assert.InDelta(t, testCase.expected, seconds, 1e-9)
		})
	}
}

func TestParse_RejectedForms(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		text string
	}{
		{name: "empty text", text: ""},
		{name: "only separator", text: ":"},
		{name: "missing minutes", text: ":30"},
		{name: "missing seconds", text: "1:"},
		{name: "two colons", text: "1:2:3"},
		{name: "negative seconds", text: "-5"},
		{name: "negative minutes", text: "-1:30"},
		{name: "stray whitespace", text: " 1:30"},
		{name: "trailing whitespace", text: "1:30 "},
		{name: "letters", text: "abc"},
		{name: "trailing fraction separator", text: "1:30."},
		{name: "fraction with letters", text: "1:30.5a"},
		{name: "exponent notation", text: "1e2"},
		{name: "plus sign", text: "+1:30"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			seconds, ok := timecodec.Parse(testCase.text)
			assert.False(t, ok)
			assert.Zero(t, seconds)
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{name: "zero", seconds: 0, expected: "00:00.000"},
		{name: "subsecond", seconds: 0.125, expected: "00:00.125"},
		{name: "full form", seconds: 65.5, expected: "01:05.500"},
		{name: "millisecond rounding", seconds: 59.9996, expected: "01:00.000"},
		{name: "rounding down", seconds: 59.9994, expected: "00:59.999"},
		{name: "minutes above display width", seconds: 6065.5, expected: "101:05.500"},
		{name: "negative clamped to zero", seconds: -3, expected: "00:00.000"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, timecodec.Format(testCase.seconds))
		})
	}
}

func TestFormat_RoundTripsThroughParse(t *testing.T) {
	t.Parallel()

	for _, seconds := range []float64{0, 0.5, 65.5, 330, 3665.125} {
		formatted := timecodec.Format(seconds)

		parsed, ok := timecodec.Parse(formatted)
		require.True(t, ok)
		assert.InDelta(t, seconds, parsed, 1e-9)
	}
}
