package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntryExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEntryAt("value", time.Minute, now)
	assert.Equal(t, "value", e.Value)
	assert.Equal(t, now.Add(time.Minute), e.ExpiresAt)
	assert.False(t, e.IsExpiredAt(now))
	assert.False(t, e.IsExpiredAt(now.Add(59*time.Second)))
	assert.True(t, e.IsExpiredAt(now.Add(time.Minute)))
	assert.True(t, e.IsExpiredAt(now.Add(time.Hour)))
}

func TestEntryZeroTTLIsExpiredImmediately(t *testing.T) {
	now := time.Now()
	e := NewEntryAt(42, 0, now)
	assert.True(t, e.IsExpiredAt(now))
	assert.True(t, NewEntry("x", 0).IsExpired())
}

func TestEntryWallClock(t *testing.T) {
	e := NewEntry([]byte("payload"), time.Hour)
	assert.False(t, e.IsExpired())
	e = NewEntry([]byte("payload"), 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.True(t, e.IsExpired())
}
