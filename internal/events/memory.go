package events

import (
	"context"
	"sync"
)

// MemoryPublisher keeps published events in memory. Handy for tests and local tooling.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, events ...Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Of returns the published events of type t, in order.
func (p *MemoryPublisher) Of(t Type) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
