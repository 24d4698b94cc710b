package testfixtures

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

// Recorder keeps activity events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (r *Recorder) Record(_ context.Context, event domain.ActivityEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *Recorder) Events() []domain.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ActivityEvent(nil), r.events...)
}

// Actions returns the recorded action names in order.
func (r *Recorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}
