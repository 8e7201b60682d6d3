package service

import (
	"sync"

	"github.com/bnema/vidpipe/internal/domain"
)

// Event types published for a job.
const (
	EventProgress = "progress"
	EventDone     = "done"
	EventFailed   = "failed"
)

type Event struct {
	Type     string           `json:"type"`
	Status   domain.JobStatus `json:"status"`
	Progress domain.Progress  `json:"progress"`
	Error    string           `json:"error,omitempty"`
}

// Terminal reports whether e is the last event of a job.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventFailed
}

type EventPublisher interface {
	Publish(jobID string, event Event)
}

type EventBus struct {
	subscribers map[string][]chan Event
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
	}
}

func (eb *EventBus) Subscribe(jobID string) chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, 16)
	eb.subscribers[jobID] = append(eb.subscribers[jobID], ch)
	return ch
}

func (eb *EventBus) Unsubscribe(jobID string, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[jobID]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[jobID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(eb.subscribers[jobID]) == 0 {
		delete(eb.subscribers, jobID)
	}
}

// Publish never blocks. Progress events are dropped for slow subscribers;
// a terminal event replaces the oldest buffered event so it is never lost.
func (eb *EventBus) Publish(jobID string, event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[jobID] {
		select {
		case ch <- event:
			continue
		default:
		}
		if !event.Terminal() {
			continue
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}
