// Package watch follows saves of an identity's board made by other clients.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/logging"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/remote"
	log "github.com/sirupsen/logrus"
)

// PollInterval is how often WaitForUpdate reads the stored record.
const PollInterval = 200 * time.Millisecond

// Source is the part of the remote store a Watcher reads. *remote.Client
// implements it.
type Source interface {
	GetRecord(ctx context.Context, identity string) (*remote.Record, error)
	SubscribeBoardEvents(ctx context.Context, identity string) (*remote.Subscription, error)
}

// Watcher follows one identity's stored board.
type Watcher struct {
	src      Source
	identity string
	log      *log.Entry
}

// New creates a watcher for identity. A nil logger discards output.
func New(src Source, identity string, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Watcher{
		src:      src,
		identity: identity,
		log:      logging.Component(logger, "watch").WithField("identity", identity),
	}
}

// Latest returns the stamp of the stored record, or the zero time when none
// exists yet.
func (w *Watcher) Latest(ctx context.Context) (time.Time, error) {
	record, err := w.src.GetRecord(ctx, w.identity)
	if err != nil {
		if remote.IsNotFound(err) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return record.UpdatedAt, nil
}

// WaitForUpdate polls until the stored record is stamped after since.
// Returns the record or an error if timeout occurs.
func (w *Watcher) WaitForUpdate(ctx context.Context, since time.Time, timeout time.Duration) (*remote.Record, error) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timeoutCh:
			return nil, fmt.Errorf("timeout waiting for a board update after %v", timeout)

		case <-ticker.C:
			record, err := w.src.GetRecord(ctx, w.identity)
			if err != nil {
				if remote.IsNotFound(err) {
					continue
				}
				return nil, fmt.Errorf("failed to read stored board: %w", err)
			}
			if record.UpdatedAt.After(since) {
				return record, nil
			}
		}
	}
}

// Follow calls fn with every record saved after since until ctx is done or fn
// returns an error. Records not newer than the last one delivered are skipped.
// Returns nil when ctx is cancelled.
func (w *Watcher) Follow(ctx context.Context, since time.Time, fn func(*remote.Record) error) error {
	sub, err := w.src.SubscribeBoardEvents(ctx, w.identity)
	if err != nil {
		return err
	}
	defer sub.Close()

	w.log.Debug("following board events")
	last := since
	errs := sub.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.log.WithError(err).Warn("skipping board event")

		case record, ok := <-sub.Events():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("board event subscription closed")
			}
			if !record.UpdatedAt.After(last) {
				w.log.WithField("stamp", record.UpdatedAt).Debug("ignoring stale board event")
				continue
			}
			last = record.UpdatedAt
			if err := fn(record); err != nil {
				return err
			}
		}
	}
}
