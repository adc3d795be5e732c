package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(time.Minute, 3)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	// separate keys have separate budgets
	assert.True(t, l.Allow("b"))
}

func TestLimiterRemaining(t *testing.T) {
	l := NewLimiter(time.Minute, 5)
	assert.Equal(t, 5, l.Remaining("a"))
	l.Allow("a")
	l.Allow("a")
	assert.Equal(t, 3, l.Remaining("a"))
}

func TestLimiterWindowExpiry(t *testing.T) {
	l := NewLimiter(10*time.Millisecond, 1)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Allow("a"))
}
