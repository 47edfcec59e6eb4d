package timefmt

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInput(t *testing.T) {
	testCases := []struct {
		name     string
		in       time.Time
		expected string
	}{
		{
			name:     "Zero padded fields",
			in:       time.Date(2024, time.March, 5, 7, 9, 59, 0, time.UTC),
			expected: "2024-03-05T07:09",
		},
		{
			name:     "Non UTC zone uses UTC fields",
			in:       time.Date(2024, time.January, 1, 1, 30, 0, 0, time.FixedZone("SAST", 2*3600)),
			expected: "2023-12-31T23:30",
		},
		{
			name:     "Short year is padded to four digits",
			in:       time.Date(987, time.December, 31, 23, 59, 0, 0, time.UTC),
			expected: "0987-12-31T23:59",
		},
		{
			name:     "Five digit year",
			in:       time.Date(12345, time.June, 1, 0, 0, 0, 0, time.UTC),
			expected: "12345-06-01T00:00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInput(tc.in))
		})
	}
}

func TestFormatInput_Shape(t *testing.T) {
	shape := regexp.MustCompile(`^\d{4,}-\d{2}-\d{2}T\d{2}:\d{2}$`)
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		ts := time.Unix(r.Int63n(1<<35), 0)
		assert.Regexp(t, shape, FormatInput(ts))
	}
}

func TestParseInput_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		ts := time.Unix(r.Int63n(1<<35), r.Int63n(1e9)).UTC()
		got, err := ParseInput(FormatInput(ts))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, ts.Truncate(time.Minute), *got, "instant %v", ts)
	}
}

func TestParseInput(t *testing.T) {
	got, err := ParseInput("2024-02-29T13:45")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 13, 45, 0, 0, time.UTC), *got)
	assert.Equal(t, "2024-02-29T13:45:00.000Z", ISO(*got))
}

func TestParseInput_Empty(t *testing.T) {
	got, err := ParseInput("")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseInput_Overflow(t *testing.T) {
	got, err := ParseInput("2024-13-01T10:75")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 11, 15, 0, 0, time.UTC), *got)
}

func TestParseInput_Malformed(t *testing.T) {
	for _, in := range []string{"2024-01-01", "2024-01-01T", "abc-01-01T10:00", "2024-01T10:00", "2024-01-01T10:xx"} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseInput(in)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Nil(t, got)
		})
	}
}

func TestDisplay(t *testing.T) {
	ts := time.Date(2024, time.January, 2, 15, 4, 5, 0, time.FixedZone("X", -3600))
	assert.Equal(t, "Tue, 02 Jan 2024 16:04:05 GMT", Display(ts))
}
