package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"delay", "+15m", now.Add(15 * time.Minute)},
		{"compound delay", "+1h30m", now.Add(90 * time.Minute)},
		{"later today", "16:00", time.Date(2026, 10, 18, 16, 0, 0, 0, time.UTC)},
		{"already past rolls to tomorrow", "09:00", time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)},
		{"date", "2026-12-01", time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"date and time", "2026-12-01 08:15", time.Date(2026, 12, 1, 8, 15, 0, 0, time.UTC)},
		{"iso", "2026-12-01T08:15", time.Date(2026, 12, 1, 8, 15, 0, 0, time.UTC)},
		{"surrounding space", "  16:00 ", time.Date(2026, 10, 18, 16, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParse_UsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got, err := Parse("2026-12-01 08:15", now.In(loc))
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 8, got.Hour())
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "tomorrow", "25:00", "2026-13-01", "+", "+soon", "+-5m", "18/10/2026"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input, now)
			assert.Error(t, err)
		})
	}
}
