// Package observer is a small subscriber registry shared by the client stores.
package observer

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Registry delivers values to subscribers in subscription order. Notify is called outside
// the owner's locks and holds none of its own while a callback runs, so subscribers may
// unsubscribe from inside their own callback. Each subscriber is checked just before its
// callback: once unsubscribe returns, no Notify that has not yet reached that subscriber
// delivers to it. A callback already running when unsubscribe is called runs to completion.
type Registry[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []*subscriber[T]
}

type subscriber[T any] struct {
	id     int
	fn     func(T)
	active atomic.Bool
}

func (r *Registry[T]) Subscribe(fn func(T)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &subscriber[T]{id: r.nextID, fn: fn}
	r.nextID++
	s.active.Store(true)
	r.subs = append(r.subs, s)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.active.Store(false)
			r.mu.Lock()
			r.subs = slices.DeleteFunc(r.subs, func(o *subscriber[T]) bool { return o.id == s.id })
			r.mu.Unlock()
		})
	}
}

func (r *Registry[T]) Notify(v T) {
	r.mu.Lock()
	subs := slices.Clone(r.subs)
	r.mu.Unlock()

	for _, s := range subs {
		if s.active.Load() {
			s.fn(v)
		}
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
