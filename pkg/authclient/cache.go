// Copyright (c) 2026 Notesput. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authclient

import (
	"context"
	"sync"
	"sync/atomic"
)

// Status is the phase of a [State].
type Status int

const (
	// StatusPending means a session fetch is owed or in flight.
	StatusPending Status = iota
	// StatusReady means the last fetch succeeded. Session may be nil.
	StatusReady
	// StatusError means the last fetch failed.
	StatusError
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "pending"
	}
}

// State is an immutable snapshot of the cache.
type State struct {
	Status  Status
	Session *SessionView
	Err     error
	// Version increases with every state change.
	Version uint64
}

// Authenticated reports whether the state holds a session.
func (s State) Authenticated() bool {
	return s.Status == StatusReady && s.Session != nil
}

// FetchFunc loads the current session. It returns (nil, nil) when signed out.
type FetchFunc func(ctx context.Context) (*SessionView, error)

// subscriber serializes callbacks for one Subscribe call. States are delivered
// in version order and never overlap; a state superseded while a callback is
// running is skipped in favor of the newest one.
type subscriber struct {
	notify func(State)

	mu          sync.Mutex
	lastVersion uint64
	pending     *State
	running     bool
	closed      bool
}

// deliver queues state and, unless another goroutine is already delivering,
// drains the queue. It never calls notify with a state older than one already
// delivered, and never after close.
func (s *subscriber) deliver(state State) {
	s.mu.Lock()
	if s.closed || (s.lastVersion != 0 && state.Version <= s.lastVersion) {
		s.mu.Unlock()
		return
	}
	if s.pending == nil || state.Version > s.pending.Version {
		s.pending = &state
	}
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true

	for s.pending != nil && !s.closed {
		next := *s.pending
		s.pending = nil
		s.lastVersion = next.Version
		s.mu.Unlock()

		s.notify(next)

		s.mu.Lock()
	}
	s.running = false
	s.mu.Unlock()
}

func (s *subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.pending = nil
	s.mu.Unlock()
}

/*
SessionCache holds the last known session for one client.

Lifecycle:

  - Starts Pending. The first subscriber starts a fetch.
  - The fetch resolves to Ready{session} (possibly nil) or Error{cause}.
  - Refresh re-enters Pending and fetches again.
  - Clear forces Ready{nil} without a fetch.
  - When the last subscriber leaves, the cache resets to Pending and any
    in-flight result is discarded.

All subscribers share one in-flight fetch. State values are swapped whole, so a
reader never sees a partially updated state. Callbacks run outside the cache
lock. Callbacks of one subscriber never overlap and observe strictly increasing
versions, so the last state a subscriber sees is the cache's latest. A callback
may call back into the cache.
*/
type SessionCache struct {
	fetch FetchFunc
	state atomic.Pointer[State]

	mu          sync.Mutex
	subscribers map[uint64]*subscriber
	nextID      uint64
	generation  uint64
	version     uint64
	inFlight    bool
	cancel      context.CancelFunc

	workers sync.WaitGroup
}

// NewSessionCache creates a cache backed by fetch.
func NewSessionCache(fetch FetchFunc) *SessionCache {
	cache := &SessionCache{
		fetch:       fetch,
		subscribers: make(map[uint64]*subscriber),
	}
	cache.state.Store(&State{Status: StatusPending})
	return cache
}

// State returns the current snapshot.
func (c *SessionCache) State() State {
	return *c.state.Load()
}

// Subscribe registers fn and immediately delivers the current state to it.
// The returned function unsubscribes; calling it more than once is safe.
func (c *SessionCache) Subscribe(fn func(State)) (unsubscribe func()) {
	sub := &subscriber{notify: fn}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = sub
	if len(c.subscribers) == 1 && c.State().Status == StatusPending && !c.inFlight {
		c.startFetchLocked()
	}
	current := c.State()
	c.mu.Unlock()

	sub.deliver(current)

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *SessionCache) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subscribers[id]
	if !ok {
		return
	}
	delete(c.subscribers, id)
	sub.close()

	if len(c.subscribers) == 0 {
		c.abortLocked()
		c.setLocked(State{Status: StatusPending})
	}
}

// Refresh discards the current state, re-enters Pending and starts a new
// fetch if anyone is subscribed.
func (c *SessionCache) Refresh() {
	c.mu.Lock()
	c.abortLocked()
	state := c.setLocked(State{Status: StatusPending})
	if len(c.subscribers) > 0 {
		c.startFetchLocked()
	}
	subs := c.snapshotLocked()
	c.mu.Unlock()

	broadcast(subs, state)
}

// Clear forces Ready{nil}. Any in-flight fetch is discarded.
func (c *SessionCache) Clear() {
	c.mu.Lock()
	c.abortLocked()
	state := c.setLocked(State{Status: StatusReady})
	subs := c.snapshotLocked()
	c.mu.Unlock()

	broadcast(subs, state)
}

// Wait blocks until the cache leaves Pending or ctx is done. It holds a
// subscription for its duration.
func (c *SessionCache) Wait(ctx context.Context) (State, error) {
	settled := make(chan State, 1)
	unsubscribe := c.Subscribe(func(state State) {
		if state.Status != StatusPending {
			select {
			case settled <- state:
			default:
			}
		}
	})
	defer unsubscribe()

	select {
	case state := <-settled:
		return state, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Close drops every subscriber, discards in-flight work and waits for the
// fetch goroutine to exit.
func (c *SessionCache) Close() {
	c.mu.Lock()
	for _, sub := range c.subscribers {
		sub.close()
	}
	clear(c.subscribers)
	c.abortLocked()
	c.setLocked(State{Status: StatusPending})
	c.mu.Unlock()

	c.workers.Wait()
}

// startFetchLocked launches a fetch for a new generation.
func (c *SessionCache) startFetchLocked() {
	c.generation++
	generation := c.generation

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.inFlight = true

	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		defer cancel()

		view, err := c.fetch(ctx)

		c.mu.Lock()
		if generation != c.generation {
			c.mu.Unlock()
			return
		}
		c.inFlight = false
		c.cancel = nil

		next := State{Status: StatusReady, Session: view}
		if err != nil {
			next = State{Status: StatusError, Err: err}
		}
		state := c.setLocked(next)
		subs := c.snapshotLocked()
		c.mu.Unlock()

		broadcast(subs, state)
	}()
}

// abortLocked invalidates the in-flight fetch, if any.
func (c *SessionCache) abortLocked() {
	c.generation++
	c.inFlight = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *SessionCache) setLocked(next State) State {
	c.version++
	next.Version = c.version
	c.state.Store(&next)
	return next
}

func (c *SessionCache) snapshotLocked() []*subscriber {
	subs := make([]*subscriber, 0, len(c.subscribers))
	for _, sub := range c.subscribers {
		subs = append(subs, sub)
	}
	return subs
}

func broadcast(subs []*subscriber, state State) {
	for _, sub := range subs {
		sub.deliver(state)
	}
}
