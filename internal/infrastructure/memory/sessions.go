package memory

import (
	"crypto/sha256"
	"crypto/subtle"
	"sync"
)

// SessionRegistry maps an email to the digest of its current session token.
// Issuing a token for an email replaces the previous one.
type SessionRegistry struct {
	mu      sync.RWMutex
	digests map[string][sha256.Size]byte
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{digests: make(map[string][sha256.Size]byte)}
}

func (r *SessionRegistry) Issue(email, token string) {
	d := sha256.Sum256([]byte(token))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.digests[email] = d
}

// Verify reports whether token is the most recently issued token for email.
func (r *SessionRegistry) Verify(email, token string) bool {
	r.mu.RLock()
	stored, ok := r.digests[email]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	d := sha256.Sum256([]byte(token))
	return subtle.ConstantTimeCompare(stored[:], d[:]) == 1
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.digests)
}
