package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Timeframe
		wantErr bool
	}{
		{
			name:  "single day with clock",
			input: "1 day, 03:00:00",
			want:  Timeframe{Days: 1, Hours: 3},
		},
		{
			name:  "multiple days with clock",
			input: "3 days, 1:30:15",
			want:  Timeframe{Days: 3, Hours: 1, Minutes: 30, Seconds: 15},
		},
		{
			name:  "clock only",
			input: "3:00:00",
			want:  Timeframe{Hours: 3},
		},
		{
			name:  "indefinite sentinel without clock",
			input: "99 days",
			want:  Timeframe{Days: 99},
		},
		{
			name:  "json object",
			input: `{"days":2,"hours":4,"minutes":30,"seconds":0}`,
			want:  Timeframe{Days: 2, Hours: 4, Minutes: 30},
		},
		{
			name:  "json indefinite",
			input: `{"days":99,"hours":0,"minutes":0,"seconds":0}`,
			want:  Timeframe{Days: 99},
		},
		{
			name:  "surrounding whitespace",
			input: "  2 days, 0:10:00  ",
			want:  Timeframe{Days: 2, Minutes: 10},
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "soon",
			wantErr: true,
		},
		{
			name:    "missing clock component",
			input:   "1 day, 03:00",
			wantErr: true,
		},
		{
			name:    "non-numeric hours",
			input:   "x:00:00",
			wantErr: true,
		},
		{
			name:    "malformed json object",
			input:   `{"days":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeframe(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeframeIndefinite(t *testing.T) {
	assert.True(t, Timeframe{Days: 99}.Indefinite())
	assert.True(t, Timeframe{Days: 99, Hours: 5}.Indefinite())
	assert.False(t, Timeframe{Days: 98}.Indefinite())
	assert.False(t, Timeframe{}.Indefinite())
}

func TestTimeframeDuration(t *testing.T) {
	tf := Timeframe{Days: 1, Hours: 2, Minutes: 30, Seconds: 45}
	want := 24*time.Hour + 2*time.Hour + 30*time.Minute + 45*time.Second
	assert.Equal(t, want, tf.Duration())
}

func TestTimeframeString(t *testing.T) {
	assert.Equal(t, "1 day, 3:00:00", Timeframe{Days: 1, Hours: 3}.String())
	assert.Equal(t, "2 days, 0:05:00", Timeframe{Days: 2, Minutes: 5}.String())
	assert.Equal(t, "0:00:30", Timeframe{Seconds: 30}.String())
}

func TestTimeframeStringRoundTrips(t *testing.T) {
	for _, tf := range []Timeframe{
		{Days: 1, Hours: 3},
		{Days: 99},
		{Hours: 12, Minutes: 30},
	} {
		parsed, err := ParseTimeframe(tf.String())
		require.NoError(t, err)
		assert.Equal(t, tf, parsed)
	}
}
