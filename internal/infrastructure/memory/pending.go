// Package memory holds the process-local registries of the confirmation
// workflow. Nothing here survives a restart.
package memory

import (
	"errors"
	"sync"

	"github.com/go-confirm-api/internal/domain"
)

// ErrPendingExists is returned by PendingRegistry.Issue when the email already
// has an outstanding code.
var ErrPendingExists = errors.New("pending confirmation already exists")

// PendingRegistry maps an email to its outstanding confirmation code.
// It holds at most one code per email and never overwrites one.
type PendingRegistry struct {
	mu    sync.RWMutex
	codes map[string]domain.PendingConfirmation
}

func NewPendingRegistry() *PendingRegistry {
	return &PendingRegistry{codes: make(map[string]domain.PendingConfirmation)}
}

func (r *PendingRegistry) HasPending(email string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.codes[email]
	return ok
}

// Issue records code for email. The existence check and the write happen under
// one lock, so of two concurrent callers exactly one succeeds.
func (r *PendingRegistry) Issue(email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[email]; ok {
		return ErrPendingExists
	}
	r.codes[email] = domain.PendingConfirmation{Email: email, Code: code}
	return nil
}

func (r *PendingRegistry) Peek(email string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.codes[email]
	return p.Code, ok
}

// Consume removes the entry for email. Missing entries are ignored.
func (r *PendingRegistry) Consume(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, email)
}

// ConsumeIf removes the entry only while it still holds code.
func (r *PendingRegistry) ConsumeIf(email, code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.codes[email]; ok && cur.Code == code {
		delete(r.codes, email)
		return true
	}
	return false
}

func (r *PendingRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}
