// Package clipboard hands column text to the system clipboard.
package clipboard

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// Copier places text on a clipboard.
type Copier interface {
	Copy(text string) error
}

// System writes to the OS clipboard (pbcopy, xclip/xsel/wl-copy, or the
// Windows clipboard API, depending on platform).
type System struct{}

// Copy implements Copier.
func (System) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// Discard accepts and drops every payload. Used when clipboard support is
// disabled in the config.
type Discard struct{}

// Copy implements Copier.
func (Discard) Copy(string) error { return nil }

// Recorder keeps every payload in memory.
type Recorder struct {
	mu       sync.Mutex
	payloads []string
	Err      error // returned by Copy when set
}

// Copy implements Copier.
func (r *Recorder) Copy(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.payloads = append(r.payloads, text)
	return nil
}

// Payloads returns the recorded payloads in order.
func (r *Recorder) Payloads() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.payloads...)
}

// Last returns the most recent payload.
func (r *Recorder) Last() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.payloads) == 0 {
		return "", false
	}
	return r.payloads[len(r.payloads)-1], true
}
