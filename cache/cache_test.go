package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakpoints(t *testing.T) {
	b := NewBreakpoints(0)
	key := Key{PublicID: "sample", Type: "upload", ResourceType: "image", Transformation: "c_scale,w_100", Format: "jpg"}

	_, ok := b.Get(key)
	assert.False(t, ok)

	b.Set(key, []int{50, 100, 150})
	widths, ok := b.Get(key)
	assert.True(t, ok)
	assert.Equal(t, []int{50, 100, 150}, widths)

	// a different transformation is a different entry
	other := key
	other.Transformation = "c_scale,w_200"
	_, ok = b.Get(other)
	assert.False(t, ok)

	b.Delete(key)
	_, ok = b.Get(key)
	assert.False(t, ok)
}

func TestBreakpointsExpiry(t *testing.T) {
	b := NewBreakpoints(10 * time.Millisecond)
	key := Key{PublicID: "sample"}
	b.Set(key, []int{100})
	time.Sleep(30 * time.Millisecond)
	_, ok := b.Get(key)
	assert.False(t, ok)
}

func TestBreakpointsFlush(t *testing.T) {
	b := NewBreakpoints(0)
	b.Set(Key{PublicID: "a"}, []int{1})
	b.Set(Key{PublicID: "b"}, []int{2})
	b.Flush()
	_, ok := b.Get(Key{PublicID: "a"})
	assert.False(t, ok)
}
