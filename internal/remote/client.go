// Package remote stores one board snapshot per identity in Redis.
//
// Each identity owns a single hash (see BoardKey) that is replaced wholesale on
// every save. There is no merging: the remote copy is a projection of whatever
// board the client last pushed. Every applied save is announced on
// BoardEventsChannel so other devices of the same identity can follow along.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	"github.com/redis/go-redis/v9"
)

// ErrStale is returned by UpsertBoard when the stored record carries a newer
// stamp than the write being attempted. The stored record is left untouched.
var ErrStale = errors.New("stored board is newer than this write")

// StaleError is the concrete refusal returned by UpsertBoard. It matches
// ErrStale with errors.Is and carries the stamp of the record that was kept.
type StaleError struct {
	Stored time.Time
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s (stored stamp %s)", ErrStale, e.Stored.UTC().Format(time.RFC3339Nano))
}

// Is reports whether target is ErrStale.
func (e *StaleError) Is(target error) bool {
	return target == ErrStale
}

// upsertScript replaces the record unless the stored stamp is newer.
// KEYS[1] = board key; ARGV = identity, board_data, updated_at, stamp.
// Returns {1, stamp} when written, {0, stored stamp} when refused.
var upsertScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'stamp')
if current and current > ARGV[4] then
	return {0, current}
end
redis.call('HSET', KEYS[1], 'identity', ARGV[1], 'board_data', ARGV[2], 'updated_at', ARGV[3], 'stamp', ARGV[4])
return {1, ARGV[4]}
`)

// Client provides namespace-scoped Redis operations for board snapshots.
// The client is safe for concurrent use by multiple goroutines.
type Client struct {
	rdb       *redis.Client
	namespace string
}

// NewClient creates a snapshot store client.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - namespace: key namespace (must not be empty)
func NewClient(redisOpts *redis.Options, namespace string) (*Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &Client{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// NewClientFromURL parses a redis:// URL and creates a client.
func NewClientFromURL(url, namespace string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return NewClient(opts, namespace)
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// GetRecord retrieves the stored record of an identity.
// Returns (nil, redis.Nil) if no record exists; use IsNotFound to check.
func (c *Client) GetRecord(ctx context.Context, identity string) (*Record, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity cannot be empty")
	}
	key := BoardKey(c.namespace, identity)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read board from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	record, err := HashToRecord(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize board: %w", err)
	}
	return record, nil
}

// GetBoard retrieves the stored board of an identity.
// Returns (nil, redis.Nil) if no record exists.
func (c *Client) GetBoard(ctx context.Context, identity string) (board.Board, error) {
	record, err := c.GetRecord(ctx, identity)
	if err != nil {
		return nil, err
	}
	return record.Board, nil
}

// UpsertBoard replaces the stored board of an identity with b, stamped with ts.
// A record stamped later than ts is kept and a *StaleError naming its stamp is
// returned, so an earlier save that completes late cannot clobber a newer one.
// Publishes the full record JSON to BoardEventsChannel after a successful write.
func (c *Client) UpsertBoard(ctx context.Context, identity string, b board.Board, ts time.Time) error {
	if identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}

	hash, err := RecordToHash(&Record{Identity: identity, Board: b, UpdatedAt: ts})
	if err != nil {
		return fmt.Errorf("failed to serialize board: %w", err)
	}

	key := BoardKey(c.namespace, identity)
	reply, err := upsertScript.Run(ctx, c.rdb, []string{key},
		hash[fieldIdentity], hash[fieldBoardData], hash[fieldUpdatedAt], hash[fieldStamp],
	).Slice()
	if err != nil {
		return fmt.Errorf("failed to write board to Redis: %w", err)
	}
	if len(reply) != 2 {
		return fmt.Errorf("unexpected upsert reply: %v", reply)
	}
	if applied, _ := reply[0].(int64); applied == 0 {
		raw, _ := reply[1].(string)
		stored, err := ParseStamp(raw)
		if err != nil {
			return fmt.Errorf("invalid stored stamp: %w", err)
		}
		return &StaleError{Stored: stored}
	}

	// Publish event
	recordJSON, err := json.Marshal(&Record{Identity: identity, Board: b, UpdatedAt: ts.UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal board for event: %w", err)
	}
	channel := BoardEventsChannel(c.namespace, identity)
	if err := c.rdb.Publish(ctx, channel, recordJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish board event: %w", err)
	}
	return nil
}

// Subscription represents an active Pub/Sub subscription to board events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Record
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of saved records.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *Record {
	return s.events
}

// Errors returns the channel of subscription errors. Undecodable messages are
// reported here and skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Implements io.Closer.
// Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeBoardEvents subscribes to saves of an identity's board, including
// saves made by this client. Delivery is at-most-once: events published while
// nobody listens, or while the buffer (size 10) is full, are lost.
func (c *Client) SubscribeBoardEvents(ctx context.Context, identity string) (*Subscription, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity cannot be empty")
	}
	pubsub := c.rdb.Subscribe(ctx, BoardEventsChannel(c.namespace, identity))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to board events: %w", err)
	}

	eventsChan := make(chan *Record, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var record Record
				if err := json.Unmarshal([]byte(msg.Payload), &record); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal board event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &record:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
