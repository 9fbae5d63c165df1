package time

import (
	"testing"
	tm "time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocal(t *testing.T) {
	tests := []struct {
		input string
		want  tm.Time
	}{
		{"2024-05-06T10:00:00", tm.Date(2024, 5, 6, 10, 0, 0, 0, tm.UTC)},
		{"2024-05-06T10:00:00.123", tm.Date(2024, 5, 6, 10, 0, 0, 123000000, tm.UTC)},
		{"2024-05-06T10:00:00.123456789", tm.Date(2024, 5, 6, 10, 0, 0, 123000000, tm.UTC)},
		{"2024-05-06T10:00", tm.Date(2024, 5, 6, 10, 0, 0, 0, tm.UTC)},
		{"2024-05-06T12:00:00+02:00", tm.Date(2024, 5, 6, 10, 0, 0, 0, tm.UTC)},
		{" 2024-05-06T10:00:00Z ", tm.Date(2024, 5, 6, 10, 0, 0, 0, tm.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseLocal(tt.input)
		require.NoError(t, err, tt.input)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.input, got)
		assert.Equal(t, tm.UTC, got.Location())
	}
}

func TestParseLocalRejects(t *testing.T) {
	for _, input := range []string{"", "nonsense", "2024-13-01T00:00:00", "06/05/2024"} {
		_, err := ParseLocal(input)
		assert.Error(t, err, input)
	}
}

func TestFormatLocal(t *testing.T) {
	ts := tm.Date(2024, 5, 6, 12, 30, 0, 5000000, tm.FixedZone("CEST", 2*3600))

	assert.Equal(t, "2024-05-06T10:30:00.005", FormatLocal(ts))

	back, err := ParseLocal(FormatLocal(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(back))
}
