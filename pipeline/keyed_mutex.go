// ABOUTME: Per-deal lock so updates to the same deal run one at a time
// ABOUTME: Waiting for the lock honours context cancellation
package pipeline

import (
	"context"
	"sync"
)

type keyedMutex struct {
	mu    sync.Mutex
	slots map[int64]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{slots: make(map[int64]*slot)}
}

// Lock blocks until id is free or ctx is done. The returned func releases it.
func (k *keyedMutex) Lock(ctx context.Context, id int64) (func(), error) {
	k.mu.Lock()
	s, ok := k.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		k.slots[id] = s
	}
	s.refs++
	k.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				k.release(id, s)
			})
		}, nil
	case <-ctx.Done():
		k.release(id, s)
		return nil, ctx.Err()
	}
}

func (k *keyedMutex) release(id int64, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, id)
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}
