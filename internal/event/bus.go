// Package event carries job lifecycle notifications to in-process
// subscribers, such as the log mirror that feeds the external webhook
// forwarder.
package event

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Type string

const (
	JobStarted   Type = "job.started"
	JobCompleted Type = "job.completed"
	JobTooLarge  Type = "job.too_large"
	JobFailed    Type = "job.failed"
)

type Event struct {
	Type      Type
	Timestamp time.Time
	Job       JobEvent
}

type JobEvent struct {
	JobID     string
	URL       string
	SizeBytes uint64
	ErrorRef  string
}

type Handler func(ctx context.Context, event Event)

type Bus interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventType Type, handler Handler) (unsubscribe func())
}

// NewBus creates an in-process event bus. Handlers run synchronously on the
// publishing goroutine.
func NewBus() Bus {
	return &inProcessBus{
		subscribers: make(map[Type][]subscriberEntry),
	}
}

type subscriberEntry struct {
	id      uint64
	handler Handler
}

type inProcessBus struct {
	mu          sync.RWMutex
	subscribers map[Type][]subscriberEntry
	nextID      uint64
}

func (b *inProcessBus) Publish(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	subs := make([]subscriberEntry, len(b.subscribers[event.Type]))
	copy(subs, b.subscribers[event.Type])
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(ctx, event)
	}
}

func (b *inProcessBus) Subscribe(eventType Type, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriberEntry{
		id:      id,
		handler: handler,
	})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// LogSubscriber mirrors job lifecycle events into the structured log. The
// external webhook log forwarder tails this stream.
func LogSubscriber(bus Bus) {
	for _, t := range []Type{JobStarted, JobCompleted, JobTooLarge, JobFailed} {
		bus.Subscribe(t, func(_ context.Context, e Event) {
			evt := log.Info().Str("job_id", e.Job.JobID).Str("url", e.Job.URL)
			if e.Job.SizeBytes > 0 {
				evt = evt.Uint64("size", e.Job.SizeBytes)
			}
			if e.Job.ErrorRef != "" {
				evt = evt.Str("error_ref", e.Job.ErrorRef)
			}
			evt.Msg(string(e.Type))
		})
	}
}
