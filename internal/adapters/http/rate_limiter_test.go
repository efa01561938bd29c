package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpgradeLimiter_Allow(t *testing.T) {
	rl := NewUpgradeLimiter(2, time.Minute)

	assert.True(t, rl.Allow("t1"))
	assert.True(t, rl.Allow("t1"))
	assert.False(t, rl.Allow("t1"), "third attempt inside the window is blocked")

	// Tokens are limited independently.
	assert.True(t, rl.Allow("t2"))
}

func TestUpgradeLimiter_WindowSlides(t *testing.T) {
	rl := NewUpgradeLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("t1"))
	assert.False(t, rl.Allow("t1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("t1"), "attempts age out of the window")
}
