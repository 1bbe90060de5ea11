package watchlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	sp, _ := time.LoadLocation("America/Sao_Paulo")

	tests := []struct {
		input string
		ok    bool
		want  time.Time
	}{
		{"2024-01-15T13:00:00Z", true, time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)},
		{"Mon Jan 15 2024 10:00:00 GMT-0300 (Horário Padrão de Brasília)", true, time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)},
		{"2024-01-15", true, time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)},
		{"15/01/2024", true, time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"ABC3", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseDate(tt.input, sp)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v", got)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	sp, _ := time.LoadLocation("America/Sao_Paulo")

	assert.True(t, sameDay("2024-01-15T23:59:00-03:00", "2024-01-15", sp))
	assert.False(t, sameDay("2024-01-16T01:00:00Z", "2024-01-16", sp), "still the 15th in São Paulo")
	assert.True(t, sameDay("", "garbage", sp))
	assert.False(t, sameDay("", "2024-01-15", sp))
}
