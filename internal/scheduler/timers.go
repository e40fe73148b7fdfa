package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
	"github.com/linktrack/linktrack/internal/notify"
)

// deliverTimeout bounds a single deferred dispatch.
const deliverTimeout = 30 * time.Second

// timerRegistry holds one-shot delivery timers for chats with a configured
// notification time. Scheduling again for the same link replaces the
// pending timer, so only the freshest update is delivered.
type timerRegistry struct {
	mu     sync.Mutex
	timers map[int64]*time.Timer
	loc    *time.Location
	sender notify.Sender
	log    *logger.Logger
}

func newTimerRegistry(loc *time.Location, sender notify.Sender, log *logger.Logger) *timerRegistry {
	return &timerRegistry{
		timers: make(map[int64]*time.Timer),
		loc:    loc,
		sender: sender,
		log:    log.WithComponent("scheduler.timers"),
	}
}

// Schedule arms a one-shot dispatch of updates at the next occurrence of
// hhmm in the registry's timezone. Values that fail to parse are dropped;
// the API validates delivery times before they reach storage.
func (r *timerRegistry) Schedule(linkID int64, hhmm string, updates []model.LinkUpdate) {
	runAt, ok := nextOccurrence(hhmm, time.Now().In(r.loc), r.loc)
	if !ok {
		r.log.Warn("unparseable notify time", map[string]interface{}{"link_id": linkID, "time": hhmm})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, found := r.timers[linkID]; found {
		existing.Stop()
	}

	r.log.Info("deferred update scheduled", map[string]interface{}{
		"link_id": linkID,
		"run_at":  runAt.Format(time.RFC3339),
		"count":   len(updates),
	})

	r.timers[linkID] = time.AfterFunc(time.Until(runAt), func() {
		r.mu.Lock()
		delete(r.timers, linkID)
		r.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		defer cancel()
		if err := r.sender.Send(ctx, updates); err != nil {
			r.log.WithError(err).Error("deferred dispatch failed", map[string]interface{}{"link_id": linkID})
		}
	})
}

// StopAll cancels every pending timer.
func (r *timerRegistry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}

// nextOccurrence resolves HH:MM to today's occurrence in loc, rolling over
// to tomorrow when the time has already passed.
func nextOccurrence(hhmm string, now time.Time, loc *time.Location) (time.Time, bool) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	runAt := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, loc)
	if runAt.Before(now) {
		runAt = runAt.Add(24 * time.Hour)
	}
	return runAt, true
}
