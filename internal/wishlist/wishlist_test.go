package wishlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleTwiceIsIdentity(t *testing.T) {
	for _, start := range [][]string{nil, {"a"}, {"a", "b"}, {"b", "x"}} {
		got := Toggle(Toggle(start, "x"), "x")
		assert.True(t, Equal(start, got), "start=%v got=%v", start, got)
	}
}

func TestToggleAddsAndRemoves(t *testing.T) {
	ids := Toggle(nil, "a")
	assert.True(t, Contains(ids, "a"))
	ids = Toggle(ids, "a")
	assert.False(t, Contains(ids, "a"))
}

func TestEqualIsOrderInsensitive(t *testing.T) {
	assert.True(t, Equal([]string{"b", "a"}, []string{"a", "b", "a"}))
	assert.False(t, Equal([]string{"a"}, []string{"a", "c"}))
}
