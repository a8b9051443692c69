package workflow

import (
	"sync"

	"vidlingo/internal/queue"
)

const subscriberBuffer = 16

type subscriber struct {
	jobID string
	ch    chan queue.Job
}

// Hub fans job snapshots out to subscribers. Slow subscribers lose their
// oldest pending snapshot rather than blocking publishers.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers for snapshots of jobID, or of every job when jobID is
// empty. The returned function unsubscribes and closes the channel.
func (h *Hub) Subscribe(jobID string) (<-chan queue.Job, func()) {
	sub := &subscriber{jobID: jobID, ch: make(chan queue.Job, subscriberBuffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Publish delivers a snapshot of job to matching subscribers.
func (h *Hub) Publish(job queue.Job) {
	if h == nil {
		return
	}
	if job.ObjectKeys != nil {
		job.ObjectKeys = append([]string(nil), job.ObjectKeys...)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.jobID != "" && sub.jobID != job.JobID {
			continue
		}
		select {
		case sub.ch <- job:
			continue
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- job:
		default:
		}
	}
}

// Subscribers returns the number of registered subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
