// internal/application/usecase/helpers.go
package usecase

import (
	"strings"
	"sync"
)

// validDocID reports whether s can be a Firestore document id supplied by a
// caller. Malformed identifiers are rejected here, before any store access.
func validDocID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 1500 {
		return false
	}
	if s == "." || s == ".." {
		return false
	}
	if strings.ContainsAny(s, "/\x00") {
		return false
	}
	return true
}

// userLocks serializes open-cart mutations per user uid.
// Locks are created lazily and never reclaimed; the per-entry cost is one
// mutex per user seen by this process.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: map[string]*sync.Mutex{}}
}

// lock acquires the mutex for uid and returns the unlock func.
func (l *userLocks) lock(uid string) func() {
	l.mu.Lock()
	m, ok := l.locks[uid]
	if !ok {
		m = &sync.Mutex{}
		l.locks[uid] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
