// Package cache remembers server-computed responsive breakpoints so
// repeated renders of the same asset skip the probe round-trip.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Key identifies one breakpoint set
type Key struct {
	PublicID       string
	Type           string
	ResourceType   string
	Transformation string
	Format         string
}

func (k Key) String() string {
	return strings.Join([]string{k.PublicID, k.Type, k.ResourceType, k.Transformation, k.Format}, "/")
}

// Breakpoints is an in-memory breakpoint cache, safe for concurrent use
type Breakpoints struct {
	store *gocache.Cache
}

// NewBreakpoints makes a cache whose entries expire after ttl; a zero
// ttl keeps entries until overwritten
func NewBreakpoints(ttl time.Duration) *Breakpoints {
	if ttl == 0 {
		ttl = gocache.NoExpiration
	}
	return &Breakpoints{store: gocache.New(ttl, 10*time.Minute)}
}

// Get returns the cached widths for the key
func (b *Breakpoints) Get(k Key) ([]int, bool) {
	v, ok := b.store.Get(k.String())
	if !ok {
		return nil, false
	}
	widths, ok := v.([]int)
	return widths, ok
}

// Set stores the widths for the key
func (b *Breakpoints) Set(k Key, widths []int) {
	b.store.SetDefault(k.String(), widths)
}

// Delete drops the entry for the key
func (b *Breakpoints) Delete(k Key) {
	b.store.Delete(k.String())
}

// Flush drops every entry
func (b *Breakpoints) Flush() {
	b.store.Flush()
}
