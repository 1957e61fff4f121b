//go:build integration

package remote

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container for testing.
func setupRedis(t *testing.T) string {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

// TestUpsertBoard_RealRedis exercises the Lua stale-write guard against a real server.
func TestUpsertBoard_RealRedis(t *testing.T) {
	client, err := NewClientFromURL(setupRedis(t), "integration")
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx))

	base := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := board.New().AddItems(board.IDFunc(func() string { return fmt.Sprintf("item-%d", i) }),
				board.InitialColumnID, fmt.Sprintf("save %d", i))
			err := client.UpsertBoard(ctx, "alice", b, base.Add(time.Duration(i)*time.Millisecond))
			if err != nil {
				assert.ErrorIs(t, err, ErrStale)
			}
		}(i)
	}
	wg.Wait()

	got, err := client.GetBoard(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got[0].Tasks, 1)
	assert.Equal(t, "save 19", got[0].Tasks[0].Text)
}
