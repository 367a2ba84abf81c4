package cache

import "time"

// Entry is a cached value paired with the instant it stops being fresh.
// Entries are never updated in place; a refresh replaces the entry.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// NewEntry returns an entry that expires ttl from now.
func NewEntry[V any](value V, ttl time.Duration) Entry[V] {
	return NewEntryAt(value, ttl, time.Now())
}

// NewEntryAt returns an entry that expires ttl after now.
func NewEntryAt[V any](value V, ttl time.Duration, now time.Time) Entry[V] {
	return Entry[V]{Value: value, ExpiresAt: now.Add(ttl)}
}

// IsExpired reports whether the entry is stale at the current time.
func (e Entry[V]) IsExpired() bool {
	return e.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the entry is stale at now.
func (e Entry[V]) IsExpiredAt(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
