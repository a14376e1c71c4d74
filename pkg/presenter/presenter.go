// Package presenter renders replies, menus and transient "working" indicators
// onto a chat transport.
package presenter

import (
	"context"
	"sync/atomic"

	"github.com/tinyland-inc/pocketbot/pkg/logger"
)

// MessageRef identifies a posted message so it can be deleted later.
type MessageRef struct {
	ConversationID string
	MessageID      int
}

// Transport is the outbound half of a chat channel.
type Transport interface {
	SendText(ctx context.Context, conversationID, text string, kb *Keyboard) (MessageRef, error)
	SendFile(ctx context.Context, conversationID, path, name string) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
}

type Presenter struct {
	transport Transport
}

func New(t Transport) *Presenter {
	return &Presenter{transport: t}
}

// Reply posts text with an optional keyboard. Transport failures are logged
// and reported to the caller.
func (p *Presenter) Reply(ctx context.Context, conversationID, text string, kb *Keyboard) error {
	_, err := p.transport.SendText(ctx, conversationID, text, kb)
	if err != nil {
		logger.WarnCF("presenter", "Failed to send message", map[string]any{
			"conversation": conversationID,
			"error":        err.Error(),
		})
	}
	return err
}

func (p *Presenter) SendFile(ctx context.Context, conversationID, path, name string) error {
	err := p.transport.SendFile(ctx, conversationID, path, name)
	if err != nil {
		logger.WarnCF("presenter", "Failed to send file", map[string]any{
			"conversation": conversationID,
			"file":         name,
			"error":        err.Error(),
		})
	}
	return err
}

// ShowWorking posts label as a transient indicator. The returned handle is
// never nil; if the post failed, Retract does nothing.
func (p *Presenter) ShowWorking(ctx context.Context, conversationID, label string) *Indicator {
	ind := &Indicator{transport: p.transport}
	ref, err := p.transport.SendText(ctx, conversationID, label, nil)
	if err != nil {
		logger.WarnCF("presenter", "Failed to post working indicator", map[string]any{
			"conversation": conversationID,
			"error":        err.Error(),
		})
		ind.retracted.Store(true)
		return ind
	}
	ind.ref = ref
	return ind
}

type Indicator struct {
	transport Transport
	ref       MessageRef
	retracted atomic.Bool
}

// Retract deletes the indicator message. Only the first call reaches the
// transport; delete failures are logged and swallowed.
func (i *Indicator) Retract(ctx context.Context) {
	if i == nil || !i.retracted.CompareAndSwap(false, true) {
		return
	}
	// Exit paths may run after the request context is cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := i.transport.DeleteMessage(ctx, i.ref); err != nil {
		logger.WarnCF("presenter", "Failed to retract working indicator", map[string]any{
			"conversation": i.ref.ConversationID,
			"message_id":   i.ref.MessageID,
			"error":        err.Error(),
		})
	}
}
