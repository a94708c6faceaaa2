// Package notify is the real-time notification boundary: a room-keyed
// publish/subscribe broker for generation events.
package notify

import "github.com/lectio/pollgen/internal/quizgen"

// The string/Notification instantiation is the orchestrator's notifier.
var _ quizgen.Notifier = (*Broker[string, quizgen.Notification])(nil)

// subscribeRequest registers a new subscriber channel for an ID.
type subscribeRequest[TID comparable, TPayload any] struct {
	ID      TID
	Channel chan TPayload
}

// unsubscribeRequest removes a subscriber channel for an ID.
type unsubscribeRequest[TID comparable, TPayload any] struct {
	ID      TID
	Channel chan TPayload
}

type publication[TID comparable, TPayload any] struct {
	ID      TID
	Payload TPayload
}

// Broker fans payloads out to every subscriber of an ID. Publishing is
// fire-and-forget: a subscriber whose buffer is full misses the payload
// rather than blocking the publisher, so slow consumers can never stall
// question generation.
type Broker[TID comparable, TPayload any] struct {
	stopChannel        chan struct{}
	publishChannel     chan publication[TID, TPayload]
	subscribeChannel   chan subscribeRequest[TID, TPayload]
	unsubscribeChannel chan unsubscribeRequest[TID, TPayload]
}

// NewBroker creates a Broker. Call Start in a goroutine and Stop to shut
// it down.
func NewBroker[TID comparable, TPayload any]() *Broker[TID, TPayload] {
	return &Broker[TID, TPayload]{
		stopChannel:        make(chan struct{}),
		publishChannel:     make(chan publication[TID, TPayload]),
		subscribeChannel:   make(chan subscribeRequest[TID, TPayload]),
		unsubscribeChannel: make(chan unsubscribeRequest[TID, TPayload]),
	}
}

// Start runs the broker loop. It blocks until Stop is called, so it
// should run in its own goroutine.
func (b *Broker[TID, TPayload]) Start() {
	subscribers := map[TID][]chan TPayload{}
	for {
		select {
		case <-b.stopChannel:
			for _, subs := range subscribers {
				for _, c := range subs {
					close(c)
				}
			}
			return

		case sub := <-b.subscribeChannel:
			subscribers[sub.ID] = append(subscribers[sub.ID], sub.Channel)

		case unsub := <-b.unsubscribeChannel:
			subs := subscribers[unsub.ID]
			for i, c := range subs {
				if c == unsub.Channel {
					subscribers[unsub.ID] = append(subs[:i], subs[i+1:]...)
					close(c)
					break
				}
			}
			if len(subscribers[unsub.ID]) == 0 {
				delete(subscribers, unsub.ID)
			}

		case pub := <-b.publishChannel:
			for _, c := range subscribers[pub.ID] {
				select {
				case c <- pub.Payload:
				default:
					// Subscriber buffer full: drop rather than block.
				}
			}
		}
	}
}

// Stop shuts down the broker loop and closes all subscriber channels.
func (b *Broker[TID, TPayload]) Stop() {
	close(b.stopChannel)
}

// Subscribe registers a buffered channel receiving payloads for id until
// Unsubscribe is called.
func (b *Broker[TID, TPayload]) Subscribe(id TID) chan TPayload {
	channel := make(chan TPayload, 16)
	b.subscribeChannel <- subscribeRequest[TID, TPayload]{ID: id, Channel: channel}
	return channel
}

// Unsubscribe removes a previously subscribed channel and closes it.
func (b *Broker[TID, TPayload]) Unsubscribe(id TID, channel chan TPayload) {
	b.unsubscribeChannel <- unsubscribeRequest[TID, TPayload]{ID: id, Channel: channel}
}

// Publish delivers the payload to current subscribers of id. It never
// blocks on slow subscribers and never reports failure.
func (b *Broker[TID, TPayload]) Publish(id TID, payload TPayload) {
	select {
	case b.publishChannel <- publication[TID, TPayload]{ID: id, Payload: payload}:
	case <-b.stopChannel:
	}
}
