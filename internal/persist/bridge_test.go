package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/remote"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBridge(t *testing.T) (*Bridge, *remote.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client, err := remote.NewClient(&redis.Options{Addr: mr.Addr()}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return New(client, Options{SaveTimeout: time.Second}), client, mr
}

func sample() board.Board {
	return board.Board{
		{ID: "c1", Tasks: []board.Item{{ID: "i1", Text: "wash"}}},
		{ID: "c2", Tasks: []board.Item{}},
	}
}

// gatedStore blocks every UpsertBoard until release is closed.
type gatedStore struct {
	release chan struct{}
	err     error

	mu     sync.Mutex
	stamps []time.Time
}

func (s *gatedStore) GetBoard(ctx context.Context, identity string) (board.Board, error) {
	return nil, errors.New("unavailable")
}

func (s *gatedStore) UpsertBoard(ctx context.Context, identity string, b board.Board, ts time.Time) error {
	s.mu.Lock()
	s.stamps = append(s.stamps, ts)
	s.mu.Unlock()
	<-s.release
	return s.err
}

func TestStart(t *testing.T) {
	ctx := context.Background()

	t.Run("loads stored board", func(t *testing.T) {
		bridge, client, _ := setupBridge(t)
		require.NoError(t, client.UpsertBoard(ctx, "alice", sample(), time.Now()))

		got, found, err := bridge.Start(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, sample().Equal(got))

		identity, ok := bridge.Identity()
		assert.True(t, ok)
		assert.Equal(t, "alice", identity)
	})

	t.Run("missing record is not an error", func(t *testing.T) {
		bridge, _, _ := setupBridge(t)
		got, found, err := bridge.Start(ctx, "newcomer")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
		assert.True(t, bridge.Active())
	})

	t.Run("load failure keeps session active", func(t *testing.T) {
		bridge := New(&gatedStore{release: make(chan struct{})}, Options{})
		_, found, err := bridge.Start(ctx, "alice")
		assert.Error(t, err)
		assert.False(t, found)
		assert.True(t, bridge.Active())
	})

	t.Run("rejects empty identity", func(t *testing.T) {
		bridge, _, _ := setupBridge(t)
		_, _, err := bridge.Start(ctx, "")
		assert.Error(t, err)
		assert.False(t, bridge.Active())
	})
}

func TestResume(t *testing.T) {
	bridge, client, _ := setupBridge(t)
	require.NoError(t, client.UpsertBoard(context.Background(), "alice", sample(), time.Now()))

	require.NoError(t, bridge.Resume("alice"))
	assert.True(t, bridge.Active())

	bridge.SaveAsync(board.New())
	bridge.Wait()
	got, err := client.GetBoard(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, board.New().Equal(got), "resume does not load, later saves replace")

	assert.Error(t, New(client, Options{}).Resume(""))
}

func TestLoadWithoutSession(t *testing.T) {
	bridge, _, _ := setupBridge(t)
	_, _, err := bridge.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestEnd(t *testing.T) {
	bridge, _, mr := setupBridge(t)
	_, _, err := bridge.Start(context.Background(), "alice")
	require.NoError(t, err)

	bridge.End()
	assert.False(t, bridge.Active())

	assert.False(t, bridge.SaveAsync(sample()), "no save without a session")
	bridge.Wait()
	assert.False(t, mr.Exists(remote.BoardKey("test", "alice")))
}

func TestSaveAsync(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes full snapshot", func(t *testing.T) {
		bridge, client, _ := setupBridge(t)
		_, _, err := bridge.Start(ctx, "alice")
		require.NoError(t, err)

		assert.True(t, bridge.SaveAsync(sample()))
		bridge.Wait()

		got, err := client.GetBoard(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, sample().Equal(got))
		assert.False(t, bridge.Saving())
		assert.NoError(t, bridge.Status().LastError)
		assert.False(t, bridge.Status().LastSavedAt.IsZero())
	})

	t.Run("last issued save wins", func(t *testing.T) {
		bridge, client, _ := setupBridge(t)
		_, _, err := bridge.Start(ctx, "alice")
		require.NoError(t, err)

		first := board.New()
		second := sample()
		bridge.SaveAsync(first)
		bridge.SaveAsync(second)
		bridge.Wait()

		got, err := client.GetBoard(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, second.Equal(got))
	})

	t.Run("saving flag tracks in-flight saves", func(t *testing.T) {
		store := &gatedStore{release: make(chan struct{})}
		bridge := New(store, Options{SaveTimeout: time.Second})
		bridge.Start(ctx, "alice")

		bridge.SaveAsync(sample())
		bridge.SaveAsync(sample())
		assert.True(t, bridge.Saving())
		assert.Equal(t, 2, bridge.Status().InFlight)

		close(store.release)
		bridge.Wait()
		assert.False(t, bridge.Saving())
	})

	t.Run("stamps strictly increase under a frozen clock", func(t *testing.T) {
		store := &gatedStore{release: make(chan struct{})}
		close(store.release)
		frozen := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
		bridge := New(store, Options{Now: func() time.Time { return frozen }})
		bridge.Start(ctx, "alice")

		for i := 0; i < 3; i++ {
			bridge.SaveAsync(sample())
		}
		bridge.Wait()

		require.Len(t, store.stamps, 3)
		seen := map[time.Time]bool{}
		for _, ts := range store.stamps {
			assert.False(t, seen[ts], "duplicate stamp %v", ts)
			seen[ts] = true
		}
	})

	t.Run("failure is recorded, not raised", func(t *testing.T) {
		store := &gatedStore{release: make(chan struct{}), err: errors.New("boom")}
		close(store.release)
		bridge := New(store, Options{})
		bridge.Start(ctx, "alice")

		assert.True(t, bridge.SaveAsync(sample()))
		bridge.Wait()
		assert.Error(t, bridge.Status().LastError)
		assert.False(t, bridge.Saving())
	})

	t.Run("snapshot is isolated from later mutation", func(t *testing.T) {
		bridge, client, _ := setupBridge(t)
		bridge.Start(ctx, "alice")

		b := sample()
		bridge.SaveAsync(b)
		b[0].Tasks[0].Text = "mutated"
		bridge.Wait()

		got, err := client.GetBoard(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "wash", got[0].Tasks[0].Text)
	})
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		bridge, _, _ := setupBridge(t)
		assert.ErrorIs(t, bridge.Save(ctx, sample()), ErrNoSession)
	})

	t.Run("reports success", func(t *testing.T) {
		bridge, client, _ := setupBridge(t)
		bridge.Start(ctx, "alice")

		require.NoError(t, bridge.Save(ctx, sample()))
		got, err := client.GetBoard(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, sample().Equal(got))
	})

	t.Run("reports failure", func(t *testing.T) {
		bridge, _, mr := setupBridge(t)
		bridge.Start(ctx, "alice")
		mr.Close()

		err := bridge.Save(ctx, sample())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save board")
		assert.False(t, bridge.Saving())
	})

	t.Run("lands after a writer with a faster clock", func(t *testing.T) {
		_, client, _ := setupBridge(t)
		now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
		ahead := New(client, Options{Now: func() time.Time { return now.Add(30 * time.Second) }})
		behind := New(client, Options{Now: func() time.Time { return now }})
		require.NoError(t, ahead.Resume("alice"))
		require.NoError(t, behind.Resume("alice"))

		require.NoError(t, ahead.Save(ctx, board.New()))
		require.NoError(t, behind.Save(ctx, sample()))

		got, err := client.GetBoard(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, sample().Equal(got), "the later save wins regardless of clocks")
		assert.NoError(t, behind.Status().LastError)

		record, err := client.GetRecord(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, record.UpdatedAt.After(now.Add(30*time.Second)))
	})

	t.Run("async save lands after a writer with a faster clock", func(t *testing.T) {
		bridge, client, _ := setupBridge(t)
		require.NoError(t, client.UpsertBoard(ctx, "alice", board.New(), time.Now().Add(time.Hour)))
		require.NoError(t, bridge.Resume("alice"))

		bridge.SaveAsync(sample())
		bridge.Wait()

		got, err := client.GetBoard(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, sample().Equal(got))
	})

	t.Run("reports persistent refusal", func(t *testing.T) {
		store := &refusingStore{}
		bridge := New(store, Options{})
		require.NoError(t, bridge.Resume("alice"))

		err := bridge.Save(ctx, sample())
		assert.ErrorIs(t, err, remote.ErrStale)
		assert.ErrorIs(t, bridge.Status().LastError, remote.ErrStale)
		assert.Equal(t, maxRebase+1, store.calls)
	})

	t.Run("refusal is final when a later save was issued", func(t *testing.T) {
		store := &refusingStore{release: make(chan struct{})}
		bridge := New(store, Options{})
		require.NoError(t, bridge.Resume("alice"))

		done := make(chan error, 1)
		go func() { done <- bridge.Save(ctx, board.New()) }()
		store.waitCalls(1)

		bridge.SaveAsync(sample())
		close(store.release)

		assert.NoError(t, <-done, "the later save carries a newer board")
		bridge.Wait()
	})
}

// refusingStore refuses every write as stamped behind a record far in the
// future. When release is set, writes block until it is closed.
type refusingStore struct {
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (s *refusingStore) GetBoard(ctx context.Context, identity string) (board.Board, error) {
	return nil, redis.Nil
}

func (s *refusingStore) UpsertBoard(ctx context.Context, identity string, b board.Board, ts time.Time) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	return &remote.StaleError{Stored: ts.Add(time.Hour)}
}

func (s *refusingStore) waitCalls(n int) {
	for {
		s.mu.Lock()
		calls := s.calls
		s.mu.Unlock()
		if calls >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}
