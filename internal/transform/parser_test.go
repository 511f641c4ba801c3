package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want Clock
	}{
		{"9:00 AM", Clock{Hour: 9}},
		{"9:00AM", Clock{Hour: 9}},
		{"9:15 pm", Clock{Hour: 21, Minute: 15}},
		{"12:00 AM", Clock{Hour: 0}},
		{"12:30 PM", Clock{Hour: 12, Minute: 30}},
		{"17:45", Clock{Hour: 17, Minute: 45}},
		{"08:05:59", Clock{Hour: 8, Minute: 5}},
		{"7pm", Clock{Hour: 19}},
		{"7 a.m.", Clock{Hour: 7}},
		{"18h30", Clock{Hour: 18, Minute: 30}},
		{"noon", Clock{Hour: 12}},
		{"Midnight", Clock{}},
		{"2024-03-15 14:20:00", Clock{Hour: 14, Minute: 20}},
		{"9:00a", Clock{Hour: 9}},
		{"2:00p", Clock{Hour: 14}},
		{"10:30a", Clock{Hour: 10, Minute: 30}},
		{"9a", Clock{Hour: 9}},
		{"9:00 p", Clock{Hour: 21}},
		{"12:15a", Clock{Minute: 15}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LenientParser{}.ParseClock(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClockRejects(t *testing.T) {
	// None of these may come back as a silent midnight.
	for _, in := range []string{"", "  ", "soon", "2024", "1332", "9:00x", "14:00 p"} {
		_, err := LenientParser{}.ParseClock(in)
		assert.Error(t, err, in)
	}
}

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"March 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"3/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"Friday, March 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"15.03.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LenientParser{}.ParseDate(tt.in, loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseDateWithZone(t *testing.T) {
	got, err := LenientParser{}.ParseDate("2024-03-15T23:30:00Z", time.UTC)
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC).Equal(got))
}

func TestParseDateRejects(t *testing.T) {
	for _, in := range []string{"   ", "32.13.2024"} {
		_, err := LenientParser{}.ParseDate(in, time.UTC)
		assert.Error(t, err, in)
	}
}

func TestClockOn(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	date := time.Date(2024, 11, 3, 23, 59, 59, 999, loc)
	got := Clock{Hour: 9, Minute: 30}.On(date, loc)
	assert.Equal(t, time.Date(2024, 11, 3, 9, 30, 0, 0, loc), got)
	assert.Equal(t, "09:30", Clock{Hour: 9, Minute: 30}.String())
}
