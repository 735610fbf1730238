package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCookingMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"15 mins", 15},
		{"20 min", 20},
		{"30 minutes", 30},
		{"45", 45},
		{"1 hour", 60},
		{"2 hrs", 120},
		{"1 hr 15 min", 75},
		{"1 hour and 30 minutes", 90},
		{"1.5 hours", 90},
		{"1h30m", 90},
		{"  10 Mins  ", 10},
		{"1 hour, and 30 mins", 90},
		{"24 hours", 1440},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCookingMinutes(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCookingMinutesRejects(t *testing.T) {
	for _, in := range []string{
		"", "a while", "quick", "20 fortnights", "about 20 mins", "0 mins", "20-25 mins",
		"99999999999999999999 mins", "100000h", "31 days",
		"1 hour a 30", "1 hour dan 30", "1 hour nd 30",
	} {
		_, err := ParseCookingMinutes(in)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}
