package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLog_ClaimOnce(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLog(0)

	first, err := l.Claim(ctx, "meeting-1:smtp")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := l.Claim(ctx, "meeting-1:smtp")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := l.Claim(ctx, "meeting-1:caldav")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestMemoryLog_Release(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLog(0)

	_, _ = l.Claim(ctx, "k")
	require.NoError(t, l.Release(ctx, "k"))

	ok, err := l.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLog_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	l := NewMemoryLog(time.Hour)
	l.now = func() time.Time { return now }

	ok, _ := l.Claim(ctx, "k")
	assert.True(t, ok)

	now = now.Add(30 * time.Minute)
	ok, _ = l.Claim(ctx, "k")
	assert.False(t, ok)

	now = now.Add(time.Hour)
	ok, _ = l.Claim(ctx, "k")
	assert.True(t, ok)
}
