package channels

import (
	"context"
	"sync/atomic"

	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
	"github.com/tinyland-inc/pocketbot/pkg/router"
)

// Channel is a chat transport: it produces inbound events and carries the
// presenter's replies back to the same conversation.
type Channel interface {
	presenter.Transport
	router.FileFetcher

	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

// Publisher accepts inbound events, normally a *bus.Dispatcher.
type Publisher interface {
	Publish(ev bus.InboundEvent) error
}

type BaseChannel struct {
	name      string
	publisher Publisher
	running   atomic.Bool
}

func NewBaseChannel(name string, publisher Publisher) *BaseChannel {
	return &BaseChannel{name: name, publisher: publisher}
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	return c.running.Load()
}

func (c *BaseChannel) SetRunning(running bool) {
	c.running.Store(running)
}

// HandleEvent stamps the channel name and hands the event to the publisher.
func (c *BaseChannel) HandleEvent(ev bus.InboundEvent) {
	ev.Channel = c.name
	if err := c.publisher.Publish(ev); err != nil {
		logger.WarnCF(c.name, "Dropping inbound event", map[string]any{
			"conversation": ev.ConversationID,
			"kind":         string(ev.Kind),
			"error":        err.Error(),
		})
	}
}
