package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStock(t *testing.T) {
	cases := []struct {
		total int
		want  StockStatus
	}{
		{0, StockOut},
		{1, StockLow},
		{5, StockLow},
		{10, StockLow},
		{11, StockOK},
		{500, StockOK},
	}

	for _, tc := range cases {
		got, err := ClassifyStock(tc.total, DefaultLowStockThreshold)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "total=%d", tc.total)
	}
}

func TestClassifyStock_InvalidThreshold(t *testing.T) {
	for _, threshold := range []int{0, -1} {
		_, err := ClassifyStock(5, threshold)
		assert.True(t, IsConfigurationError(err))
	}
}

func TestClassifyExpiry(t *testing.T) {
	cases := []struct {
		name string
		days int
		want ExpiryStatus
	}{
		{"one day past", -1, ExpiryExpired},
		{"today", 0, ExpiryExpiringSoon},
		{"five days", 5, ExpiryExpiringSoon},
		{"window edge", 30, ExpiryExpiringSoon},
		{"past window", 31, ExpiryGood},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ClassifyExpiry(today.AddDate(0, 0, tc.days), today, DefaultExpiringWindowDays)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyExpiry_IgnoresTimeOfDay(t *testing.T) {
	asOf := today.Add(23 * time.Hour)
	got, err := ClassifyExpiry(today, asOf, 30)
	require.NoError(t, err)
	assert.Equal(t, ExpiryExpiringSoon, got)
}

func TestClassifyExpiry_InvalidWindow(t *testing.T) {
	_, err := ClassifyExpiry(today, today, 0)
	assert.True(t, IsConfigurationError(err))
}

func TestExpiryStatusWorse(t *testing.T) {
	assert.True(t, ExpiryExpired.Worse(ExpiryExpiringSoon))
	assert.True(t, ExpiryExpiringSoon.Worse(ExpiryGood))
	assert.False(t, ExpiryGood.Worse(ExpiryGood))
}
