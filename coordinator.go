package pozeclient

import (
	"sync"
	"time"

	internalbackoff "github.com/Pe-te-r/pozeclient/internal/backoff"
)

// Coordinator is the keyed query/mutation cache. Each key owns one entry
// with an explicit state machine (idle -> fetching -> success/error); while
// an entry is fetching no second fetch is ever issued for that key, so the
// single-flight guarantee is structural rather than a property of any
// particular fetch function.
//
// Entries are owned exclusively by the Coordinator; subscribers receive
// read-only snapshots.
type Coordinator struct {
	mu      sync.Mutex
	entries map[string]*entry

	logger  Logger
	metrics *MetricsCollector
	backoff internalbackoff.Strategy
	now     func() time.Time
}

// entry is one cache slot. All field access happens under the coordinator
// mutex; the only code running outside it is the fetch itself.
type entry struct {
	key       Key
	status    EntryStatus
	value     any
	err       error
	updatedAt time.Time

	fetch  FetchFunc
	policy Policy

	subs    map[*Subscription]struct{}
	gcTimer *time.Timer

	// invalid marks the entry stale regardless of age (set by Invalidate).
	invalid bool
	// invalidSeq counts invalidations so a fetch completion can tell
	// whether one landed after the fetch started.
	invalidSeq uint64
	// fetchSeq guards against a completed fetch writing into a slot that
	// was evicted and recreated while it ran.
	fetchSeq uint64
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger sets the coordinator's logger.
func WithCoordinatorLogger(l Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// WithCoordinatorMetrics sets the coordinator's metrics collector.
func WithCoordinatorMetrics(mc *MetricsCollector) CoordinatorOption {
	return func(c *Coordinator) { c.metrics = mc }
}

// BackoffStrategy selects the retry delay calculation.
type BackoffStrategy int

const (
	// ExponentialJitter grows delays geometrically with uniform jitter.
	ExponentialJitter BackoffStrategy = iota
	// DecorrelatedJitter spreads delays over a widening random window.
	DecorrelatedJitter
)

// WithBackoffStrategy overrides the retry delay calculation.
func WithBackoffStrategy(s BackoffStrategy) CoordinatorOption {
	return func(c *Coordinator) {
		switch s {
		case DecorrelatedJitter:
			c.backoff = internalbackoff.DecorrelatedJitterStrategy{}
		default:
			c.backoff = internalbackoff.ExponentialJitterStrategy{}
		}
	}
}

// WithClock overrides the time source, used by staleness tests.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		entries: make(map[string]*entry),
		backoff: internalbackoff.ExponentialJitterStrategy{},
		now:     time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Subscribe attaches a consumer to the entry for key, creating it on a
// fresh miss. The first subscriber on a missing or stale entry triggers a
// fetch; subscribers arriving while a fetch is in flight attach to it.
func (c *Coordinator) Subscribe(key Key, fetch FetchFunc, policy Policy) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		e = &entry{
			key:  key,
			subs: make(map[*Subscription]struct{}),
		}
		c.entries[key.String()] = e
		c.metrics.RecordCacheSize(len(c.entries))
	}

	// The latest subscriber's fetch function and policy win, matching the
	// last-observer semantics consumers expect.
	e.fetch = fetch
	e.policy = policy

	sub := &Subscription{
		c:       c,
		e:       e,
		ch:      make(chan Snapshot, 1),
		enabled: policy.Enabled,
	}
	e.subs[sub] = struct{}{}

	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}

	if !sub.enabled {
		sub.push(c.snapshotLocked(e))
		return sub
	}

	c.maybeFetchLocked(e)
	sub.push(c.snapshotLocked(e))
	return sub
}

// Invalidate marks the entries for the given keys stale and refetches those
// with active subscribers. Keys without an entry are ignored; no other
// entry changes.
func (c *Coordinator) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		e, ok := c.entries[key.String()]
		if !ok {
			continue
		}
		e.invalid = true
		e.invalidSeq++
		c.metrics.RecordInvalidation(key.String())
		if c.logger != nil {
			c.logger.Debug("cache invalidated", "key", key.String())
		}
		// Disabled queries stay marked stale instead of being executed;
		// the refetch happens when the gate flips to enabled.
		if len(e.subs) > 0 && e.policy.Enabled {
			c.maybeFetchLocked(e)
		}
		c.notifyLocked(e)
	}
}

// Clear drops every entry without subscribers and invalidates the rest.
// Used on logout so no per-user data survives the session.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if len(e.subs) == 0 {
			if e.gcTimer != nil {
				e.gcTimer.Stop()
			}
			c.evictLocked(e)
			continue
		}
		e.invalid = true
		e.invalidSeq++
		c.notifyLocked(e)
	}
}

// Has reports whether an entry currently exists for key. Mainly useful to
// observe garbage collection.
func (c *Coordinator) Has(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key.String()]
	return ok
}

// maybeFetchLocked starts a fetch when the entry has no fresh value. An
// entry already fetching is left alone: later subscribers share the
// in-flight call.
func (c *Coordinator) maybeFetchLocked(e *entry) {
	switch e.status {
	case StatusFetching:
		c.metrics.RecordSingleFlightAttach(e.key.String())
		return
	case StatusSuccess:
		if !e.invalid && c.now().Sub(e.updatedAt) <= e.policy.StaleTime {
			c.metrics.RecordCacheHit(e.key.String())
			return
		}
	}
	c.metrics.RecordCacheMiss(e.key.String())
	c.startFetchLocked(e)
}

// startFetchLocked transitions the entry to fetching and launches the fetch
// goroutine. Callers must hold the mutex.
func (c *Coordinator) startFetchLocked(e *entry) {
	e.status = StatusFetching
	e.fetchSeq++
	seq := e.fetchSeq
	fetch := e.fetch
	policy := e.policy
	key := e.key

	if c.logger != nil {
		c.logger.Debug("fetch started", "key", key.String())
	}

	go c.runFetch(e, seq, e.invalidSeq, fetch, policy)
	c.notifyLocked(e)
}

// runFetch executes the fetch with the entry's retry policy and applies the
// outcome. Auth errors are a hard stop: once a 401 tears the session down,
// retrying against the invalid token is meaningless.
func (c *Coordinator) runFetch(e *entry, seq, invalidSeq uint64, fetch FetchFunc, policy Policy) {
	var value any
	var err error

	for attempt := 0; ; attempt++ {
		value, err = fetch()
		if err == nil || IsAuthError(err) {
			break
		}
		if attempt >= policy.RetryCount {
			break
		}
		c.metrics.RecordRetry(e.key.String(), attempt+1)
		if c.logger != nil {
			c.logger.Info("retrying query", "key", e.key.String(), "attempt", attempt+1, "error", err.Error())
		}
		delay := c.backoff.Calculate(attempt, policy.RetryBackoff, policy.RetryMaxBackoff, 2.0, 0.1)
		time.Sleep(delay)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The slot may have been evicted and recreated while the fetch ran, or
	// a newer fetch may have superseded this one. Apply nothing then.
	current, ok := c.entries[e.key.String()]
	if !ok || current != e || e.fetchSeq != seq {
		return
	}

	// Only an invalidation the fetch could have observed is satisfied by
	// it; one that landed mid-flight leaves the entry stale.
	if e.invalidSeq == invalidSeq {
		e.invalid = false
	}
	e.updatedAt = c.now()
	if err != nil {
		// The previous value survives for display-while-revalidate.
		e.status = StatusError
		e.err = err
		if c.logger != nil {
			c.logger.Warn("fetch failed", "key", e.key.String(), "error", err.Error())
		}
	} else {
		e.status = StatusSuccess
		e.value = value
		e.err = nil
	}

	c.notifyLocked(e)

	// A mid-flight invalidation means the stored value predates the write
	// that caused it. Refetch for active enabled subscribers.
	if e.invalid && len(e.subs) > 0 && e.policy.Enabled {
		c.startFetchLocked(e)
		return
	}

	if len(e.subs) == 0 {
		c.armGCLocked(e)
	}
}

// release detaches a subscription and arms garbage collection when the
// entry's subscriber count reaches zero. The in-flight fetch, if any, keeps
// running: its result still lands in the entry for later subscribers.
func (c *Coordinator) release(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := sub.e
	delete(e.subs, sub)
	if len(e.subs) > 0 || e.status == StatusFetching {
		return
	}
	c.armGCLocked(e)
}

func (c *Coordinator) armGCLocked(e *entry) {
	if e.gcTimer != nil {
		e.gcTimer.Stop()
	}
	if e.policy.GCTime <= 0 {
		c.evictLocked(e)
		return
	}
	key := e.key.String()
	e.gcTimer = time.AfterFunc(e.policy.GCTime, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		current, ok := c.entries[key]
		if !ok || current != e || len(e.subs) > 0 {
			return
		}
		c.evictLocked(e)
	})
}

func (c *Coordinator) evictLocked(e *entry) {
	delete(c.entries, e.key.String())
	c.metrics.RecordEviction()
	c.metrics.RecordCacheSize(len(c.entries))
	if c.logger != nil {
		c.logger.Debug("cache entry evicted", "key", e.key.String())
	}
}

func (c *Coordinator) snapshotLocked(e *entry) Snapshot {
	isStale := e.invalid
	if !isStale && e.status == StatusSuccess && c.now().Sub(e.updatedAt) > e.policy.StaleTime {
		isStale = true
	}
	return Snapshot{
		Data:      e.value,
		Err:       e.err,
		Status:    e.status,
		IsLoading: e.status == StatusFetching,
		IsStale:   isStale,
		UpdatedAt: e.updatedAt,
	}
}

func (c *Coordinator) notifyLocked(e *entry) {
	snap := c.snapshotLocked(e)
	for sub := range e.subs {
		sub.push(snap)
	}
}
