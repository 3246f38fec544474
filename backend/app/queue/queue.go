package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"mirage/backend/app/models"
)

var ErrNilEntry = errors.New("queue: nil entry")

// Entry is the envelope moved through the background queue. Producers hand
// ownership to the queue on Enqueue; the draining loop takes ownership back
// on Dequeue. Entries are never mutated after creation.
type Entry interface {
	Kind() string
}

// MachineEntry carries one agent check-in: the machine identity as reported
// (possibly without an id), the history event to record, and the raw
// pipe-delimited log blob when the agent posted results.
type MachineEntry struct {
	Machine     models.Machine
	HistoryType models.HistoryType
	Log         string
}

func (MachineEntry) Kind() string { return "machine" }

type NotificationType string

const (
	NotificationTimeline          NotificationType = "Timeline"
	NotificationTimelineDelivered NotificationType = "TimelineDelivered"
)

// NotificationEntry fans one event out to every active webhook. The payload
// shape depends on Type: a serialized HistoryTimeline for Timeline, an
// opaque blob passed through untouched for TimelineDelivered.
type NotificationEntry struct {
	Type    NotificationType
	Payload json.RawMessage
}

func (NotificationEntry) Kind() string { return "notification" }

type SurveyEntry struct {
	Survey models.Survey
}

func (SurveyEntry) Kind() string { return "survey" }

// Queue is an unbounded FIFO shared between many producing request handlers
// and a single draining consumer.
type Queue struct {
	mu    sync.Mutex
	items []Entry
	wake  chan struct{}
}

func New() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

func (q *Queue) Enqueue(e Entry) error {
	if e == nil {
		return ErrNilEntry
	}
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()
	q.signal()
	return nil
}

// Dequeue removes and returns the oldest entry, blocking until one is
// available or ctx is done. On cancellation no entry is consumed.
func (q *Queue) Dequeue(ctx context.Context) (Entry, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			e := q.items[0]
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()
			if remaining > 0 {
				// pass the wakeup on so a concurrent waiter is not stranded
				q.signal()
			}
			return e, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.wake:
		}
	}
}

// Snapshot returns the current contents without consuming them. The draining
// loop processes a snapshot per cycle and dequeues one entry per processed
// item, so entries enqueued mid-cycle are picked up on a later cycle.
func (q *Queue) Snapshot() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Entry(nil), q.items...)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
