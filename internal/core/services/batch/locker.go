package batch

import (
	"context"
	"strings"
	"sync"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

// KeyedLocker serializes work per key inside one process.
// Entries are dropped once no goroutine holds or waits for them.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyLock)}
}

// Lock waits until key is free or ctx is done. On success it returns the matching
// unlock function; otherwise it returns ctx.Err() and holds nothing.
func (l *KeyedLocker) Lock(ctx context.Context, key string) (unlock func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.sem
			l.release(key, kl)
		})
	}, nil
}

func (l *KeyedLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// Len returns the number of keys currently held or awaited.
func (l *KeyedLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// ComplianceKey identifies compliance runs of one framework for one organization.
func ComplianceKey(organization string, framework domain.Framework) string {
	return strings.ToLower(strings.TrimSpace(organization)) + "|" + string(framework)
}

// RiskKey identifies organization-wide risk runs.
func RiskKey(organization string) string {
	return strings.ToLower(strings.TrimSpace(organization)) + "|risk"
}
