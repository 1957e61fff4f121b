// Package persist reconciles local board mutations with the remote snapshot
// store.
//
// The Bridge tracks two things: whether a session is active (and for which
// identity) and how many saves are in flight. Local state is always the source
// of truth; the remote copy is a projection of it, except when a session starts
// and the stored board is loaded.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/logging"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/remote"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	log "github.com/sirupsen/logrus"
)

// DefaultSaveTimeout bounds a single remote save.
const DefaultSaveTimeout = 5 * time.Second

// maxRebase bounds how often one save is re-issued after the store refused
// its stamp.
const maxRebase = 3

// ErrNoSession is returned by operations that need an active session.
var ErrNoSession = errors.New("no active session")

// Store is the remote snapshot store. *remote.Client implements it.
// GetBoard must report a missing record with an error satisfying remote.IsNotFound.
// UpsertBoard must report a refused stamp with a *remote.StaleError.
type Store interface {
	GetBoard(ctx context.Context, identity string) (board.Board, error)
	UpsertBoard(ctx context.Context, identity string, b board.Board, ts time.Time) error
}

// Options tune a Bridge. Zero values select defaults.
type Options struct {
	SaveTimeout time.Duration
	Logger      *log.Logger
	Now         func() time.Time
}

// Status is a point-in-time view of the bridge state.
type Status struct {
	Identity    string
	Active      bool
	Saving      bool
	InFlight    int
	LastSavedAt time.Time // completion time of the last successful save
	LastError   error     // error of the last completed save, nil on success
}

// Bridge is safe for concurrent use.
type Bridge struct {
	store   Store
	log     *log.Entry
	timeout time.Duration
	now     func() time.Time

	mu          sync.Mutex
	identity    string
	inFlight    int
	lastStamp   time.Time
	lastSavedAt time.Time
	lastErr     error

	wg sync.WaitGroup
}

// New creates a bridge with no active session.
func New(store Store, opts Options) *Bridge {
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = DefaultSaveTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Bridge{
		store:   store,
		log:     logging.Component(opts.Logger, "persist"),
		timeout: opts.SaveTimeout,
		now:     opts.Now,
	}
}

// Identity returns the identity of the active session.
func (b *Bridge) Identity() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.identity, b.identity != ""
}

// Active reports whether a session is active.
func (b *Bridge) Active() bool {
	_, ok := b.Identity()
	return ok
}

// Start activates a session for identity and loads its stored board.
//
// Returns (board, true, nil) when a record exists and (nil, false, nil) when
// none does yet; the caller keeps its current board in that case. Any other
// failure is returned as an error and the session stays active, so later
// mutations are still saved.
func (b *Bridge) Start(ctx context.Context, identity string) (board.Board, bool, error) {
	if identity == "" {
		return nil, false, fmt.Errorf("identity cannot be empty")
	}
	b.mu.Lock()
	b.identity = identity
	b.mu.Unlock()

	b.log.WithField("identity", identity).Debug("session started")
	return b.Load(ctx)
}

// Resume activates a session for identity without loading anything. Used when
// the local working copy is already the latest board of that identity.
func (b *Bridge) Resume(identity string) error {
	if identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}
	b.mu.Lock()
	b.identity = identity
	b.mu.Unlock()
	return nil
}

// Load fetches the stored board of the active session.
func (b *Bridge) Load(ctx context.Context) (board.Board, bool, error) {
	identity, ok := b.Identity()
	if !ok {
		return nil, false, ErrNoSession
	}

	loaded, err := b.store.GetBoard(ctx, identity)
	if err != nil {
		if remote.IsNotFound(err) {
			b.log.WithField("identity", identity).Debug("no stored board yet")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load board: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, false, fmt.Errorf("stored board is invalid: %w", err)
	}
	return loaded, true, nil
}

// End deactivates the session. No remote call is made; saves already in
// flight run to completion.
func (b *Bridge) End() {
	b.mu.Lock()
	identity := b.identity
	b.identity = ""
	b.mu.Unlock()

	if identity != "" {
		b.log.WithField("identity", identity).Debug("session ended")
	}
}

// Saving reports whether at least one save is in flight.
func (b *Bridge) Saving() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inFlight > 0
}

// Status returns a snapshot of the bridge state.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Status{
		Identity:    b.identity,
		Active:      b.identity != "",
		Saving:      b.inFlight > 0,
		InFlight:    b.inFlight,
		LastSavedAt: b.lastSavedAt,
		LastError:   b.lastErr,
	}
}

// SaveAsync pushes a full snapshot of bd without waiting for the result.
// Returns false, and does nothing, when no session is active. Failures are
// logged; the local board is unaffected either way.
func (b *Bridge) SaveAsync(bd board.Board) bool {
	identity, stamp, ok := b.begin()
	if !ok {
		return false
	}
	snapshot := bd.Clone()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		if err := b.push(ctx, identity, snapshot, stamp); err != nil {
			b.log.WithError(err).WithField("identity", identity).Warn("background save failed")
		}
	}()
	return true
}

// Save pushes a full snapshot of bd and waits for the result. It is the manual
// save path and reports success or failure to its caller.
func (b *Bridge) Save(ctx context.Context, bd board.Board) error {
	identity, stamp, ok := b.begin()
	if !ok {
		return ErrNoSession
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.push(ctx, identity, bd.Clone(), stamp)
}

// Wait blocks until every save issued so far has completed.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// begin registers a save for the active session and issues its stamp.
// Stamps strictly increase so the store can tell a late-finishing older save
// from a newer one.
func (b *Bridge) begin() (identity string, stamp time.Time, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.identity == "" {
		return "", time.Time{}, false
	}

	stamp = b.now()
	if !stamp.After(b.lastStamp) {
		stamp = b.lastStamp.Add(time.Nanosecond)
	}
	b.lastStamp = stamp
	b.inFlight++
	b.wg.Add(1)
	return b.identity, stamp, true
}

// push writes bd, re-issuing it when the store holds a record stamped by a
// writer whose clock runs ahead of ours. A refusal is final only when this
// bridge has issued a later save, which carries a newer board.
func (b *Bridge) push(ctx context.Context, identity string, bd board.Board, stamp time.Time) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = b.store.UpsertBoard(ctx, identity, bd, stamp)
		var stale *remote.StaleError
		if !errors.As(err, &stale) {
			break
		}
		next, retry := b.rebase(stamp, stale.Stored)
		if !retry {
			b.log.WithField("identity", identity).Debug("save superseded by a newer one")
			err = nil
			break
		}
		if attempt == maxRebase {
			break
		}
		b.log.WithFields(log.Fields{"identity": identity, "stored": stale.Stored}).Debug("stored board stamped ahead, re-issuing save")
		stamp = next
	}

	b.mu.Lock()
	b.inFlight--
	b.lastErr = err
	if err == nil {
		b.lastSavedAt = b.now()
	}
	b.mu.Unlock()
	b.wg.Done()

	if err != nil {
		return fmt.Errorf("failed to save board: %w", err)
	}
	b.log.WithField("identity", identity).Debug("board saved")
	return nil
}

// rebase is called after the store refused stamp because it keeps a record
// stamped stored. It returns a fresh stamp after both stored and every stamp
// issued so far, or false when a later save of this bridge exists.
func (b *Bridge) rebase(stamp, stored time.Time) (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastStamp.After(stamp) {
		return time.Time{}, false
	}

	next := b.now()
	if !next.After(stored) {
		next = stored.Add(time.Nanosecond)
	}
	if !next.After(b.lastStamp) {
		next = b.lastStamp.Add(time.Nanosecond)
	}
	b.lastStamp = next
	return next, true
}
