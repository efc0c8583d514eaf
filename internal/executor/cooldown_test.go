package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCooldownAllowWithinTTL(t *testing.T) {
	c := NewCooldown(time.Hour)

	require.True(t, c.Allow("m1"))
	require.False(t, c.Allow("m1"))
	require.True(t, c.Allow("m2"))
}

func TestCooldownZeroTTLDisabled(t *testing.T) {
	c := NewCooldown(0)

	require.True(t, c.Allow("m1"))
	require.True(t, c.Allow("m1"))
}

func TestCooldownExpiry(t *testing.T) {
	c := NewCooldown(20 * time.Millisecond)

	require.True(t, c.Allow("m1"))
	time.Sleep(30 * time.Millisecond)
	require.True(t, c.Allow("m1"))
}

func TestCooldownCleanup(t *testing.T) {
	c := NewCooldown(10 * time.Millisecond)
	c.Allow("m1")
	c.Allow("m2")

	time.Sleep(20 * time.Millisecond)
	c.Cleanup()

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Empty(t, c.seen)
}
