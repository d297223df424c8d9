//go:build integration

package presence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chirp/internal/chat/presence"
	platformredis "chirp/internal/platform/redis"
	"chirp/pkg/testutil/containers"
)

func TestRedisTrackerLifecycle(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	tracker := presence.NewRedisTracker(&platformredis.Client{Client: rc.Client})

	require.NoError(t, tracker.MarkOnline(ctx, "alice"))
	require.NoError(t, tracker.MarkOnline(ctx, "bob"))

	online, err := tracker.Online(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, online)

	require.NoError(t, tracker.MarkOffline(ctx, "alice"))

	online, err = tracker.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, online)
}

func TestRedisTrackerSharedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	client := &platformredis.Client{Client: rc.Client}

	first := presence.NewRedisTracker(client)
	second := presence.NewRedisTracker(client)

	require.NoError(t, first.MarkOnline(ctx, "carol"))

	online, err := second.Online(ctx)
	require.NoError(t, err)
	assert.Contains(t, online, "carol")
}
