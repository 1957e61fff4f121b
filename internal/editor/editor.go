// Package editor owns the in-memory board and applies every mutation to it.
//
// Mutations apply to local state immediately and unconditionally. When a
// session is active each effective mutation is followed by an asynchronous
// full-snapshot save; a mutation that leaves the board unchanged saves
// nothing. Deleting a column that holds items first hands the column's text
// to the clipboard; a failed copy is logged and reported to the caller but
// does not block the deletion.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/clipboard"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/logging"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/persist"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/internal/transfer"
	"github.com/m-hosseinpour/infinite-kanban-task-manager/pkg/board"
	log "github.com/sirupsen/logrus"
)

// Syncer is the persistence side of the editor. *persist.Bridge implements it.
type Syncer interface {
	Start(ctx context.Context, identity string) (board.Board, bool, error)
	Resume(identity string) error
	Load(ctx context.Context) (board.Board, bool, error)
	End()
	Active() bool
	Saving() bool
	SaveAsync(b board.Board) bool
	Save(ctx context.Context, b board.Board) error
	Wait()
}

// Options configure an Editor. Zero values select defaults.
type Options struct {
	IDs       board.IDGenerator // defaults to board.UUIDGenerator
	Clipboard clipboard.Copier  // defaults to clipboard.Discard
	Sync      Syncer            // nil keeps the editor local-only
	Logger    *log.Logger
	Now       func() time.Time
}

// Editor is safe for concurrent use.
type Editor struct {
	mu    sync.Mutex
	board board.Board

	ids    board.IDGenerator
	clip   clipboard.Copier
	syncer Syncer
	log    *log.Entry
	now    func() time.Time
}

// New creates an editor holding initial, or a fresh board when initial is
// invalid (nil or without columns).
func New(initial board.Board, opts Options) *Editor {
	if opts.IDs == nil {
		opts.IDs = board.UUIDGenerator{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if initial.Validate() != nil {
		initial = board.New()
	}

	return &Editor{
		board:  initial.Clone(),
		ids:    opts.IDs,
		clip:   opts.Clipboard,
		syncer: opts.Sync,
		log:    logging.Component(opts.Logger, "editor"),
		now:    opts.Now,
	}
}

// Board returns a copy of the current board.
func (e *Editor) Board() board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Clone()
}

// commit installs next and schedules a save. Must be called with mu held.
// Returns false when next equals the current board.
func (e *Editor) commit(next board.Board) bool {
	if next.Equal(e.board) {
		return false
	}
	e.board = next
	e.push()
	return true
}

// push schedules a save of the current board. Must be called with mu held so
// saves are issued in commit order.
func (e *Editor) push() {
	if e.syncer != nil {
		e.syncer.SaveAsync(e.board)
	}
}

// AddColumn inserts an empty column next to anchorID and returns its id.
// Returns false when the anchor is unknown.
func (e *Editor) AddColumn(anchorID string, side board.Side) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.board.IndexOf(anchorID)
	next := e.board.AddColumnAdjacent(e.ids, anchorID, side)
	if len(next) == len(e.board) {
		return "", false
	}
	if side == board.Right {
		idx++
	}
	e.commit(next)
	e.log.WithField("column", next[idx].ID).Debug("column added")
	return next[idx].ID, true
}

// AddItems appends one item per non-blank line of raw to the column and
// returns the new item ids in order.
func (e *Editor) AddItems(columnID, raw string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	before, ok := e.board.Column(columnID)
	if !ok {
		return nil
	}
	next := e.board.AddItems(e.ids, columnID, raw)
	if !e.commit(next) {
		return nil
	}

	after, _ := next.Column(columnID)
	added := after.Tasks[len(before.Tasks):]
	ids := make([]string, len(added))
	for i, it := range added {
		ids[i] = it.ID
	}
	e.log.WithField("column", columnID).WithField("count", len(ids)).Debug("items added")
	return ids
}

// MoveItem moves an item to the end of the neighbouring column.
// Returns false when nothing moved.
func (e *Editor) MoveItem(itemID, fromColumnID string, dir board.Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(e.board.MoveItem(itemID, fromColumnID, dir))
}

// DeleteItem removes an item. Returns false when it was not there.
func (e *Editor) DeleteItem(itemID, columnID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(e.board.DeleteItem(itemID, columnID))
}

// DeleteColumn removes a column. A column holding items is copied to the
// clipboard before it disappears. The last column is never removed. copied
// reports whether the column's items reached the clipboard.
//
// The clipboard runs outside the lock. If the column changed while the copy
// ran, the new contents are copied again before the column is removed.
func (e *Editor) DeleteColumn(columnID string) (removed, copied bool) {
	var sent string
	for {
		e.mu.Lock()
		next, payload := e.board.DeleteColumn(columnID)
		if len(next) == len(e.board) {
			e.mu.Unlock()
			return false, false
		}
		if payload == "" || payload == sent {
			e.commit(next)
			e.mu.Unlock()
			e.log.WithField("column", columnID).Debug("column deleted")
			return true, copied && payload != ""
		}
		e.mu.Unlock()

		copied = e.copyToClipboard(columnID, payload)
		sent = payload
	}
}

// CopyColumn places the column's text on the clipboard without changing the
// board.
func (e *Editor) CopyColumn(columnID string) error {
	e.mu.Lock()
	text, ok := e.board.ColumnText(columnID)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("column '%s' has nothing to copy", columnID)
	}
	return e.clip.Copy(text)
}

func (e *Editor) copyToClipboard(columnID, text string) bool {
	if err := e.clip.Copy(text); err != nil {
		e.log.WithError(err).WithField("column", columnID).Warn("failed to copy column to clipboard")
		return false
	}
	return true
}

// Replace swaps the whole board and pushes it even when unchanged.
func (e *Editor) Replace(b board.Board) error {
	if err := b.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.board = b.Clone()
	e.push()
	return nil
}

// Receive installs a board saved by another client. Nothing is pushed back.
// Returns false when b is invalid or equal to the current board.
func (e *Editor) Receive(b board.Board) bool {
	if b.Validate() != nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if b.Equal(e.board) {
		return false
	}
	e.board = b.Clone()
	return true
}

// Export snapshots the current board.
func (e *Editor) Export() (*transfer.Snapshot, error) {
	return transfer.Export(e.Board(), e.now())
}

// Import validates data and, when valid, replaces the board with its columns.
// Invalid data leaves the board untouched and returns an error wrapping
// transfer.ErrInvalidFormat.
func (e *Editor) Import(data []byte) error {
	b, v := transfer.Parse(data)
	if !v.OK() {
		e.log.WithField("problems", len(v.Problems)).Warn("import rejected")
		return v.Err()
	}
	if err := e.Replace(b); err != nil {
		return err
	}
	e.log.WithField("columns", len(b)).Info("board imported")
	return nil
}

// SignIn starts a session for identity. A stored board replaces the local one;
// when none exists the local board is kept and nothing is saved until the next
// mutation.
func (e *Editor) SignIn(ctx context.Context, identity string) (bool, error) {
	if e.syncer == nil {
		return false, fmt.Errorf("remote storage is disabled")
	}
	loaded, found, err := e.syncer.Start(ctx, identity)
	if err != nil {
		e.log.WithError(err).WithField("identity", identity).Error("failed to load board")
		return false, err
	}
	if found {
		e.mu.Lock()
		e.board = loaded
		e.mu.Unlock()
	}
	return found, nil
}

// Resume reactivates a session for identity, keeping the local board.
func (e *Editor) Resume(identity string) error {
	if e.syncer == nil {
		return fmt.Errorf("remote storage is disabled")
	}
	return e.syncer.Resume(identity)
}

// Pull reloads the stored board of the active session.
func (e *Editor) Pull(ctx context.Context) (bool, error) {
	if e.syncer == nil {
		return false, persist.ErrNoSession
	}
	loaded, found, err := e.syncer.Load(ctx)
	if err != nil {
		return false, err
	}
	if found {
		e.mu.Lock()
		e.board = loaded
		e.mu.Unlock()
	}
	return found, nil
}

// SignOut ends the active session and resets the board to a fresh one. No
// remote call is made: the stored board stays as last saved.
func (e *Editor) SignOut() {
	if e.syncer == nil || !e.syncer.Active() {
		return
	}
	e.syncer.End()
	e.mu.Lock()
	e.board = board.New()
	e.mu.Unlock()
}

// Save pushes the current board and waits for the outcome.
func (e *Editor) Save(ctx context.Context) error {
	if e.syncer == nil {
		return persist.ErrNoSession
	}
	if err := e.syncer.Save(ctx, e.Board()); err != nil {
		e.log.WithError(err).Error("manual save failed")
		return err
	}
	return nil
}

// Online reports whether a session is active.
func (e *Editor) Online() bool {
	return e.syncer != nil && e.syncer.Active()
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool {
	return e.syncer != nil && e.syncer.Saving()
}

// Wait blocks until all issued saves have completed.
func (e *Editor) Wait() {
	if e.syncer != nil {
		e.syncer.Wait()
	}
}
