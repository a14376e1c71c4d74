package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrDispatcherClosed is returned when publishing to a closed Dispatcher.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// HandlerFunc processes one event. It runs on the event's conversation lane.
type HandlerFunc func(ctx context.Context, ev InboundEvent)

// Dispatcher serialises events per conversation. Events sharing a
// ConversationID are handled one at a time in publish order; events of
// different conversations run concurrently on separate lanes.
type Dispatcher struct {
	handler HandlerFunc
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	lanes  map[string]*lane
	wg     sync.WaitGroup
	closed atomic.Bool
}

type lane struct {
	queue []InboundEvent
}

func NewDispatcher(ctx context.Context, handler HandlerFunc) *Dispatcher {
	ctx, cancel := context.WithCancel(ctx)
	return &Dispatcher{
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
		lanes:   make(map[string]*lane),
	}
}

// Publish enqueues ev on its conversation lane, starting the lane if idle.
// It never blocks on handler execution.
func (d *Dispatcher) Publish(ev InboundEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed.Load() {
		return ErrDispatcherClosed
	}

	if l, ok := d.lanes[ev.ConversationID]; ok {
		l.queue = append(l.queue, ev)
		return nil
	}

	l := &lane{queue: []InboundEvent{ev}}
	d.lanes[ev.ConversationID] = l
	d.wg.Add(1)
	go d.drain(ev.ConversationID, l)
	return nil
}

func (d *Dispatcher) drain(key string, l *lane) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if len(l.queue) == 0 {
			delete(d.lanes, key)
			d.mu.Unlock()
			return
		}
		ev := l.queue[0]
		l.queue = l.queue[1:]
		d.mu.Unlock()

		if d.ctx.Err() != nil {
			continue
		}
		d.handler(d.ctx, ev)
	}
}

// Pending reports how many conversations currently have an active lane.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lanes)
}

// Close stops accepting events and waits for running lanes to drain.
// Events still queued after ctx is cancelled are dropped.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed.Store(true)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}
