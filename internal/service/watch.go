package service

import (
	"context"
	"sync"
	"time"

	"github.com/prajyotrote/coaching-os-sub000/internal/metrics"
	"github.com/prajyotrote/coaching-os-sub000/internal/repo"
	"github.com/prajyotrote/coaching-os-sub000/internal/store"
)

type WatchUpdate struct {
	Report *metrics.DayReport
	Change *repo.Change
	Err    error
}

// Watch recomputes the day report whenever a subscribed table changes and
// hands each result to onUpdate. It emits once at start and blocks until ctx is done.
func Watch(ctx context.Context, src repo.Source, userID string, clock func() time.Time, opts metrics.DayOptions, onUpdate func(WatchUpdate)) error {
	if clock == nil {
		clock = time.Now
	}
	live := store.New(WatchUpdate{})
	unsubscribeLive := live.Subscribe(onUpdate)
	defer unsubscribeLive()

	var mu sync.Mutex
	refresh := func(change *repo.Change) {
		mu.Lock()
		defer mu.Unlock()
		report, err := Today(ctx, src, userID, clock(), opts)
		if ctx.Err() != nil {
			return
		}
		live.Set(WatchUpdate{Report: report, Change: change, Err: err})
	}

	unsubscribers := make([]func(), 0, len(repo.Tables))
	for _, table := range repo.Tables {
		unsubscribers = append(unsubscribers, src.Subscribe(table, func(c repo.Change) {
			if c.UserID != userID {
				return
			}
			refresh(&c)
		}))
	}
	defer func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}()

	refresh(nil)
	<-ctx.Done()
	return nil
}
