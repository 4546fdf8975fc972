package products

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPercentDerivesPrice(t *testing.T) {
	var d PromotionDraft

	require.NoError(t, d.SetPercent(200000, 25))

	assert.Equal(t, 25, d.Percent)
	assert.Equal(t, int64(150000), d.Price)
}

func TestSetPriceDerivesPercent(t *testing.T) {
	var d PromotionDraft

	require.NoError(t, d.SetPrice(200000, 150000))

	assert.Equal(t, int64(150000), d.Price)
	assert.Equal(t, 25, d.Percent)
}

func TestPercentPriceRoundTrip(t *testing.T) {
	var d PromotionDraft
	require.NoError(t, d.SetPercent(200000, 25))
	require.NoError(t, d.SetPrice(200000, d.Price))

	assert.Equal(t, 25, d.Percent)
}

func TestSetPercentRejectsOutOfRange(t *testing.T) {
	d := PromotionDraft{Percent: 10, Price: 180000}

	assert.ErrorIs(t, d.SetPercent(200000, -1), ErrPercentOutOfRange)
	assert.ErrorIs(t, d.SetPercent(200000, 101), ErrPercentOutOfRange)

	// a rejected edit never moves the draft
	assert.Equal(t, 10, d.Percent)
	assert.Equal(t, int64(180000), d.Price)
}

func TestSetPercentRejectsFreeProduct(t *testing.T) {
	d := PromotionDraft{Percent: 10, Price: 180000}

	assert.ErrorIs(t, d.SetPercent(200000, 100), ErrPriceOutOfRange)
	assert.Equal(t, 10, d.Percent)
	assert.Equal(t, int64(180000), d.Price)
}

func TestSetPriceRejectsOutOfBand(t *testing.T) {
	d := PromotionDraft{Percent: 10, Price: 180000}

	assert.ErrorIs(t, d.SetPrice(200000, 0), ErrPriceOutOfRange)
	assert.ErrorIs(t, d.SetPrice(200000, 200000), ErrPriceOutOfRange)
	assert.ErrorIs(t, d.SetPrice(200000, 250000), ErrPriceOutOfRange)

	assert.Equal(t, 10, d.Percent)
	assert.Equal(t, int64(180000), d.Price)
}

func TestRecomputeForPriceKeepsPercent(t *testing.T) {
	var d PromotionDraft
	require.NoError(t, d.SetPercent(200000, 25))

	d.RecomputeForPrice(100000)

	assert.Equal(t, 25, d.Percent)
	assert.Equal(t, int64(75000), d.Price)
}

func TestPromotionDraftValidate(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)

	tests := []struct {
		name     string
		draft    PromotionDraft
		wantKeys []string
	}{
		{
			name:  "complete draft passes",
			draft: PromotionDraft{StartAt: start, EndAt: end, Percent: 25, Price: 150000},
		},
		{
			name:     "missing dates",
			draft:    PromotionDraft{Percent: 25, Price: 150000},
			wantKeys: []string{"start_day", "end_day"},
		},
		{
			name:     "end not after start",
			draft:    PromotionDraft{StartAt: start, EndAt: start, Percent: 25, Price: 150000},
			wantKeys: []string{"end_day"},
		},
		{
			name:     "price at or above variant price",
			draft:    PromotionDraft{StartAt: start, EndAt: end, Percent: 0, Price: 200000},
			wantKeys: []string{"price"},
		},
		{
			name:     "percent out of range",
			draft:    PromotionDraft{StartAt: start, EndAt: end, Percent: 120, Price: 150000},
			wantKeys: []string{"percent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.draft.Validate(200000)
			if len(tt.wantKeys) == 0 {
				assert.Nil(t, errs)
				return
			}
			require.NotNil(t, errs)
			require.Len(t, errs, len(tt.wantKeys))
			for _, key := range tt.wantKeys {
				assert.Contains(t, errs, key)
			}
		})
	}
}

func TestPromotionStateAt(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)
	promo := &Promotion{StartAt: start, EndAt: end}

	assert.Equal(t, PendingPromotion, promo.StateAt(start.Add(-time.Hour)))
	assert.Equal(t, ActivePromotion, promo.StateAt(start))
	assert.Equal(t, ActivePromotion, promo.StateAt(end.Add(-time.Second)))
	assert.Equal(t, ExpiredPromotion, promo.StateAt(end))

	var none *Promotion
	assert.Equal(t, NoPromotion, none.StateAt(start))
}

func TestSellStateTransitions(t *testing.T) {
	assert.True(t, Selling.CanTransitionTo(Stopped))
	assert.True(t, Stopped.CanTransitionTo(Selling))
	assert.False(t, Selling.CanTransitionTo(Selling))
	assert.False(t, Stopped.CanTransitionTo(Stopped))
}
