package healthtip

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepulse/hms-api/internal/model"
)

func TestSeasonOf(t *testing.T) {
	assert.Equal(t, "summer", seasonOf(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "monsoon", seasonOf(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "winter", seasonOf(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "winter", seasonOf(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
}

func TestSeasonalGeneratorMatchesSeasonAndSlot(t *testing.T) {
	gen := NewSeasonalGenerator(time.UTC).(*seasonalGenerator)
	gen.nowFn = func() time.Time {
		return time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	}

	tip, err := gen.Generate(context.Background(), model.TipSlotMorning)
	require.NoError(t, err)

	assert.Equal(t, "monsoon", tip.Season)
	assert.NotEmpty(t, tip.Title)
	assert.NotEmpty(t, tip.Content)
	assert.NotEmpty(t, tip.Category)
}

func TestSeasonalGeneratorRotatesAcrossDays(t *testing.T) {
	gen := NewSeasonalGenerator(time.UTC).(*seasonalGenerator)

	titles := map[string]struct{}{}
	for day := 10; day < 12; day++ {
		d := day
		gen.nowFn = func() time.Time {
			return time.Date(2026, 8, d, 9, 0, 0, 0, time.UTC)
		}
		tip, err := gen.Generate(context.Background(), model.TipSlotMorning)
		require.NoError(t, err)
		titles[tip.Title] = struct{}{}
	}

	assert.Len(t, titles, 2, "consecutive days rotate through the template set")
}
