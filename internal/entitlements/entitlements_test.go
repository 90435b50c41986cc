package entitlements

import (
	"testing"
	"time"

	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func TestPremiumActive(t *testing.T) {
	cases := []struct {
		name   string
		expiry string
		want   bool
	}{
		{"missing", "", false},
		{"future", now.Add(time.Hour).Format(time.RFC3339), true},
		{"past", now.Add(-time.Hour).Format(time.RFC3339), false},
		{"garbage", "next tuesday", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(&models.Profile{SubscriptionExpiry: tc.expiry}, now, 3)
			assert.Equal(t, tc.want, got.PremiumActive)
		})
	}
}

func TestQuotas(t *testing.T) {
	got := Compute(&models.Profile{DownloadsLimit: 12, DownloadsUsed: 5, ChatMessagesSent: 1}, now, 3)
	assert.Equal(t, 7, got.DownloadsRemaining)
	assert.Equal(t, 2, got.ChatMessagesRemaining)

	got = Compute(&models.Profile{DownloadsLimit: UnlimitedDownloads, ChatMessagesSent: 10}, now, 3)
	assert.Equal(t, Unlimited, got.DownloadsRemaining)
	assert.Equal(t, 0, got.ChatMessagesRemaining)

	premium := &models.Profile{SubscriptionExpiry: now.Add(24 * time.Hour).Format(time.RFC3339)}
	assert.Equal(t, Unlimited, Compute(premium, now, 3).ChatMessagesRemaining)

	assert.Equal(t, 3, Compute(nil, now, 3).ChatMessagesRemaining)
}

func TestCalculatorRecomputesForNewProfile(t *testing.T) {
	calc := NewCalculator(3, func() time.Time { return now })

	stale := &models.Profile{}
	assert.False(t, calc.For(stale).PremiumActive)

	fresh := &models.Profile{SubscriptionExpiry: now.Add(time.Hour).Format(time.RFC3339)}
	assert.True(t, calc.For(fresh).PremiumActive)
	assert.True(t, calc.For(fresh).PremiumActive)
}

func TestCalculatorObservesExpiry(t *testing.T) {
	clock := now
	calc := NewCalculator(3, func() time.Time { return clock })
	p := &models.Profile{SubscriptionExpiry: now.Add(30 * time.Second).Format(time.RFC3339)}

	assert.True(t, calc.For(p).PremiumActive)
	clock = now.Add(time.Minute)
	assert.False(t, calc.For(p).PremiumActive)
}
