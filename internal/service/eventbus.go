package service

import (
	"sync"

	"github.com/evertl/reelpilot/internal/domain"
)

// Event is a progress notification for one folder's job.
type Event struct {
	Kind      domain.JobKind  `json:"kind"`
	State     domain.JobState `json:"state"`
	Step      string          `json:"step,omitempty"`
	File      string          `json:"file,omitempty"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Message   string          `json:"message,omitempty"`
}

// EventBus fans job progress out to pollers holding an SSE stream open.
// Slow subscribers lose events rather than block the worker.
type EventBus struct {
	subscribers map[string][]chan Event
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
	}
}

func (eb *EventBus) Subscribe(folder string) chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, 16)
	eb.subscribers[folder] = append(eb.subscribers[folder], ch)
	return ch
}

func (eb *EventBus) Unsubscribe(folder string, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[folder]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[folder] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(eb.subscribers[folder]) == 0 {
		delete(eb.subscribers, folder)
	}
}

func (eb *EventBus) Publish(folder string, event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[folder] {
		select {
		case ch <- event:
		default:
			// Drop event if subscriber is slow
		}
	}
}
