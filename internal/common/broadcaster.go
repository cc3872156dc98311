package common

import (
	"sync"
)

// Subscriber receives changes distributed by a Broadcaster.
type Subscriber[CT any] func(change CT)

// Broadcaster distributes change payloads to all subscribers.
// Distribution runs on a single goroutine started by Broadcast, which keeps
// the delivery order consistent between subscribers.
type Broadcaster[CT any] struct {
	changes          chan CT
	lock             *sync.RWMutex
	subscribers      map[int]Subscriber[CT]
	subscriptionID   int
	subscriptionLock *sync.Mutex
}

// NewBroadcaster constructs a Broadcaster ready for subscriptions.
// Sending changes blocks until Broadcast is called.
func NewBroadcaster[CT any]() *Broadcaster[CT] {
	return &Broadcaster[CT]{
		changes:          make(chan CT),
		lock:             &sync.RWMutex{},
		subscribers:      map[int]Subscriber[CT]{},
		subscriptionLock: &sync.Mutex{},
	}
}

// Subscribe registers a subscriber for changes distribution.
// The returned function cancels the subscription; it is safe to call more than once.
func (cb *Broadcaster[CT]) Subscribe(sub Subscriber[CT]) func() {
	cb.subscriptionLock.Lock()
	id := cb.subscriptionID
	cb.subscriptionID++
	cb.subscriptionLock.Unlock()

	cb.lock.Lock()
	cb.subscribers[id] = sub
	cb.lock.Unlock()

	return func() {
		cb.lock.Lock()
		defer cb.lock.Unlock()

		delete(cb.subscribers, id)
	}
}

// Send provides a payload for distribution to all subscribers.
func (cb *Broadcaster[CT]) Send(payload CT) {
	cb.changes <- payload
}

// Broadcast starts the distribution goroutine.
// The goroutine finishes when the broadcaster is closed.
func (cb *Broadcaster[CT]) Broadcast() {
	go func() {
		for {
			change, more := <-cb.changes
			if !more {
				return
			}

			cb.lock.RLock()
			for _, subscriber := range cb.subscribers {
				subscriber(change)
			}
			cb.lock.RUnlock()
		}
	}()
}

// Close stops the distribution of changes.
func (cb *Broadcaster[CT]) Close() {
	close(cb.changes)
}
