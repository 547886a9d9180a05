package pozeclient

import (
	"context"
	"sync"
)

// Subscription is a consumer's handle on one cache entry. Snapshots are
// delivered through a conflated channel: a slow reader only ever sees the
// newest state, never a backlog.
type Subscription struct {
	c *Coordinator
	e *entry

	ch chan Snapshot

	mu      sync.Mutex
	last    Snapshot
	enabled bool
	closed  bool
}

// Updates returns the snapshot channel. The channel is never closed; use
// Close to detach.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

// Snapshot returns the most recently delivered state.
func (s *Subscription) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case snap := <-s.ch:
		s.last = snap
	default:
	}
	return s.last
}

// Enabled reports whether the subscription executes fetches.
func (s *Subscription) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled toggles the execution gate. Flipping false -> true triggers
// the first fetch; disabling never cancels an in-flight call, it only stops
// this subscription from triggering new ones.
func (s *Subscription) SetEnabled(enabled bool) {
	s.mu.Lock()
	if s.closed || s.enabled == enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = enabled
	s.mu.Unlock()

	if !enabled {
		return
	}

	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.e.policy.Enabled = true
	s.c.maybeFetchLocked(s.e)
	s.push(s.c.snapshotLocked(s.e))
}

// Refetch forces a new fetch regardless of staleness. While a fetch is
// already in flight it attaches to it instead of issuing a second call.
func (s *Subscription) Refetch() error {
	s.mu.Lock()
	if s.closed || !s.enabled {
		s.mu.Unlock()
		return ErrQueryDisabled
	}
	s.mu.Unlock()

	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.e.status == StatusFetching {
		s.c.metrics.RecordSingleFlightAttach(s.e.key.String())
		return nil
	}
	s.c.startFetchLocked(s.e)
	return nil
}

// Wait blocks until the entry settles (success or error) or ctx is done,
// returning the settled snapshot.
func (s *Subscription) Wait(ctx context.Context) (Snapshot, error) {
	snap := s.Snapshot()
	for snap.Status != StatusSuccess && snap.Status != StatusError {
		select {
		case snap = <-s.ch:
			s.mu.Lock()
			s.last = snap
			s.mu.Unlock()
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
	return snap, nil
}

// Close detaches the subscription. An in-flight fetch is not cancelled:
// its result still lands in the cache, it is simply no longer delivered
// here. Close is idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.c.release(s)
}

// push delivers snap, replacing any undelivered previous snapshot.
func (s *Subscription) push(snap Snapshot) {
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
