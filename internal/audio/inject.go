package audio

import (
	"sync"
	"time"
)

const (
	// InjectionCapacity holds 100 ms of samples at 16 kHz.
	InjectionCapacity = 1600

	// injectionEvictStep is how many of the oldest samples (10 ms) are
	// evicted per step when a push would overflow the queue.
	injectionEvictStep = 160

	// InjectionRecency is how fresh the last push must be for reads to
	// count as live microphone data.
	InjectionRecency = 100 * time.Millisecond
)

// InjectionQueue is a bounded queue of microphone samples pushed by an
// external producer and read by the capture consumer. Reads are gated on
// the recency of the last push. Safe for concurrent use.
type InjectionQueue struct {
	mu       sync.Mutex
	samples  []int16
	lastPush time.Time
	now      func() time.Time

	// Statistics
	pushed  uint64
	evicted uint64
}

// NewInjectionQueue creates an empty queue.
func NewInjectionQueue() *InjectionQueue {
	return &InjectionQueue{
		samples: make([]int16, 0, InjectionCapacity),
		now:     time.Now,
	}
}

// Push appends a batch of samples, evicting the oldest in 10 ms steps
// until the batch fits. A batch at or above capacity replaces the queue
// with its newest samples.
func (q *InjectionQueue) Push(samples []int16) {
	if len(samples) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(samples) >= InjectionCapacity {
		q.evicted += uint64(len(q.samples)) + uint64(len(samples)-InjectionCapacity)
		q.samples = append(q.samples[:0], samples[len(samples)-InjectionCapacity:]...)
	} else {
		for len(q.samples)+len(samples) > InjectionCapacity && len(q.samples) > 0 {
			step := injectionEvictStep
			if step > len(q.samples) {
				step = len(q.samples)
			}
			q.samples = q.samples[:copy(q.samples, q.samples[step:])]
			q.evicted += uint64(step)
		}
		q.samples = append(q.samples, samples...)
	}

	q.pushed += uint64(len(samples))
	q.lastPush = q.now()
}

// HasRecent reports whether the queue holds samples pushed within the
// recency window.
func (q *InjectionQueue) HasRecent() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.samples) == 0 || q.lastPush.IsZero() {
		return false
	}
	return q.now().Sub(q.lastPush) < InjectionRecency
}

// Latest returns a slice of length n holding the most recent
// min(n, queued) samples right-aligned after zero padding.
func (q *InjectionQueue) Latest(n int) []int16 {
	if n <= 0 {
		return nil
	}
	out := make([]int16, n)

	q.mu.Lock()
	defer q.mu.Unlock()

	take := len(q.samples)
	if take > n {
		take = n
	}
	copy(out[n-take:], q.samples[len(q.samples)-take:])
	return out
}

// Len returns the number of queued samples.
func (q *InjectionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.samples)
}

// Pushed returns the total number of samples ever pushed.
func (q *InjectionQueue) Pushed() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushed
}

// Evicted returns the total number of samples dropped to make room.
func (q *InjectionQueue) Evicted() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.evicted
}
