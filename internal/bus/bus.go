// Package bus handles notification of session changes between managers without direct dependency
package bus

import (
	"context"
	"fmt"
	"sync"

	"eventplanner/local-app/internal/log"
)

type Topic int

const (
	UserLoggedIn Topic = iota
	UserLoggedOut
	EventsRefreshed
)

func (t Topic) String() string {
	switch t {
	case UserLoggedIn:
		return "user_logged_in"
	case UserLoggedOut:
		return "user_logged_out"
	case EventsRefreshed:
		return "events_refreshed"
	default:
		return fmt.Sprintf("topic(%d)", int(t))
	}
}

// Message is delivered to subscribers. Data depends on the topic:
// model.User for UserLoggedIn, nil for UserLoggedOut, the event count for EventsRefreshed.
type Message struct {
	Topic Topic
	Data  interface{}
}

type Handler func(Message)

// Bus delivers messages synchronously, in subscription order. A panicking
// handler is logged and does not stop delivery to the rest.
type Bus struct {
	subscribers map[Topic][]Handler
	mu          sync.RWMutex
	logger      *log.Logger
}

func New(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Bus{
		subscribers: make(map[Topic][]Handler),
		logger:      logger,
	}
}

func (b *Bus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], handler)
}

func (b *Bus) Publish(ctx context.Context, msg Message) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subscribers[msg.Topic]))
	copy(handlers, b.subscribers[msg.Topic])
	b.mu.RUnlock()

	b.logger.Debug(ctx, "Publishing message", log.Fields{"topic": msg.Topic.String(), "subscribers": len(handlers)})
	for _, h := range handlers {
		b.deliver(ctx, h, msg)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(ctx, "Panic in message handler", log.Fields{"topic": msg.Topic.String(), "panic": fmt.Sprint(r)})
		}
	}()
	h(msg)
}
