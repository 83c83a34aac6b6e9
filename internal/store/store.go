package store

import "sync"

// Store holds a single value and notifies subscribers after every change.
// Listeners run synchronously on the writing goroutine, outside the lock.
type Store[T any] struct {
	mu        sync.RWMutex
	value     T
	nextID    int
	listeners map[int]func(T)
}

func New[T any](initial T) *Store[T] {
	return &Store[T]{value: initial, listeners: make(map[int]func(T))}
}

func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	listeners := s.snapshot()
	s.mu.Unlock()
	notify(listeners, v)
}

// Update applies fn to the current value atomically.
func (s *Store[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	next := fn(s.value)
	s.value = next
	listeners := s.snapshot()
	s.mu.Unlock()
	notify(listeners, next)
	return next
}

// Subscribe registers fn and returns a func that removes it. Calling it twice is a no-op.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store[T]) snapshot() []func(T) {
	out := make([]func(T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify[T any](listeners []func(T), v T) {
	for _, fn := range listeners {
		fn(v)
	}
}
