package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	p := DefaultProfile(SessionIdentity{AccountID: "u1", Email: "a@b.c"}, now)

	assert.Equal(t, "u1", p.UID)
	assert.Equal(t, "User", p.Name)
	assert.Equal(t, "a@b.c", p.Email)
	assert.Empty(t, p.Phone)
	assert.Equal(t, "2026-03-04T05:06:07Z", p.SignupDate)
	assert.Nil(t, p.Cart)
}

func TestProfileApplyAndClone(t *testing.T) {
	p := &Profile{UID: "u1"}
	p.Apply(map[string]any{
		FieldDownloadsLimit: float64(60),
		FieldWishlist:       []string{"p1"},
		FieldIsPremium:      true,
		"unknown":           "ignored",
	})
	require.NotNil(t, p.Wishlist)
	assert.Equal(t, 60, p.DownloadsLimit)
	assert.True(t, p.IsPremium)

	clone := p.Clone()
	(*clone.Wishlist)[0] = "changed"
	assert.Equal(t, "p1", (*p.Wishlist)[0])
}

func TestCartLineMatches(t *testing.T) {
	line := CartLine{ProductID: "p", Color: "red", Size: StringPtr("M")}
	assert.True(t, line.Matches("p", "red", StringPtr("M")))
	assert.False(t, line.Matches("p", "red", nil))
	assert.False(t, line.Matches("p", "blue", StringPtr("M")))

	unsized := CartLine{ProductID: "p", Color: "red"}
	assert.True(t, unsized.Matches("p", "red", nil))
}
