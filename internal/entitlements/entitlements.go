// Package entitlements derives premium status and quotas from a profile.
package entitlements

import (
	"sync"
	"time"

	"github.com/okestore/storefront-sync/pkg/models"
)

// UnlimitedDownloads is the downloadsLimit sentinel written for unlimited plans.
const UnlimitedDownloads = 999999

// Unlimited is returned for quotas with no ceiling.
const Unlimited = -1

// Entitlements are never stored; they are recomputed from the profile.
type Entitlements struct {
	PremiumActive         bool `json:"premiumActive"`
	DownloadsRemaining    int  `json:"downloadsRemaining"`
	ChatMessagesRemaining int  `json:"chatMessagesRemaining"`
	WhatsappSupportActive bool `json:"whatsappSupportActive"`
}

// Compute is the pure derivation. A nil profile has no entitlements beyond the free chat
// allowance.
func Compute(p *models.Profile, now time.Time, freeChatMessages int) Entitlements {
	if p == nil {
		return Entitlements{ChatMessagesRemaining: max(freeChatMessages, 0)}
	}
	out := Entitlements{
		PremiumActive:         after(p.SubscriptionExpiry, now),
		WhatsappSupportActive: after(p.WhatsappSupportExpiry, now),
	}

	switch {
	case p.DownloadsLimit >= UnlimitedDownloads:
		out.DownloadsRemaining = Unlimited
	default:
		out.DownloadsRemaining = max(p.DownloadsLimit-p.DownloadsUsed, 0)
	}

	if out.PremiumActive {
		out.ChatMessagesRemaining = Unlimited
	} else {
		out.ChatMessagesRemaining = max(freeChatMessages-p.ChatMessagesSent, 0)
	}
	return out
}

func after(value string, now time.Time) bool {
	if value == "" {
		return false
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return false
	}
	return ts.After(now)
}

// Calculator memoizes Compute on the profile pointer. Snapshots are never mutated in place,
// so a new profile always arrives as a new pointer.
type Calculator struct {
	mu       sync.Mutex
	now      func() time.Time
	freeChat int

	last   *models.Profile
	at     time.Time
	cached Entitlements
}

func NewCalculator(freeChatMessages int, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now, freeChat: freeChatMessages}
}

// For returns entitlements for p. The memo also expires once a second so expiry
// boundaries are observed without a new snapshot.
func (c *Calculator) For(p *models.Profile) Entitlements {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if p != nil && p == c.last && now.Sub(c.at) < time.Second {
		return c.cached
	}
	c.last = p
	c.at = now
	c.cached = Compute(p, now, c.freeChat)
	return c.cached
}
