package repo

import (
	"context"
	"sync"
)

// LocalFeed fans changes out to subscribers in the same process.
type LocalFeed struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Table]map[int]func(Change)
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: make(map[Table]map[int]func(Change))}
}

func (f *LocalFeed) Publish(_ context.Context, c Change) error {
	f.deliver(c)
	return nil
}

func (f *LocalFeed) deliver(c Change) {
	f.mu.RLock()
	listeners := make([]func(Change), 0, len(f.subs[c.Table]))
	for _, fn := range f.subs[c.Table] {
		listeners = append(listeners, fn)
	}
	f.mu.RUnlock()
	for _, fn := range listeners {
		fn(c)
	}
}

func (f *LocalFeed) Subscribe(table Table, onChange func(Change)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	if f.subs[table] == nil {
		f.subs[table] = make(map[int]func(Change))
	}
	f.subs[table][id] = onChange
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if subs, ok := f.subs[table]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(f.subs, table)
				}
			}
		})
	}
}
