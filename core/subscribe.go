package core

import (
	"context"
	"log/slog"

	"github.com/nfidao/nfi-smart-contract/core/events"
	"github.com/nfidao/nfi-smart-contract/core/types"
	"github.com/nfidao/nfi-smart-contract/observability"
)

const defaultSubscriptionBuffer = 64

// Subscribe registers a listener for committed events. Slow listeners lose
// events rather than stall operations. The returned cancel function is safe to
// call more than once.
func (n *Node) Subscribe(buffer int) (<-chan *types.Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriptionBuffer
	}
	ch := make(chan *types.Event, buffer)

	n.subMu.Lock()
	id := n.nextSub
	n.nextSub++
	n.subs[id] = ch
	n.subMu.Unlock()

	cancel := func() {
		n.subMu.Lock()
		defer n.subMu.Unlock()
		if existing, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of active subscriptions.
func (n *Node) Subscribers() int {
	n.subMu.Lock()
	defer n.subMu.Unlock()
	return len(n.subs)
}

// publish forwards committed events. Callers hold stateMu so subscribers and
// the archive observe commit order.
func (n *Node) publish(ctx context.Context, committed []events.Event) {
	if len(committed) == 0 {
		return
	}
	rendered := make([]*types.Event, 0, len(committed))
	metrics := observability.Events()
	for _, evt := range committed {
		out := events.Render(evt)
		if out == nil {
			continue
		}
		rendered = append(rendered, out)
		metrics.RecordCommitted(out.Type)
	}

	if n.opts.Archive != nil {
		if err := n.opts.Archive.Append(ctx, rendered); err != nil {
			n.logger.Warn("archive append failed", slog.Int("events", len(rendered)), slog.Any("error", err))
		}
	}

	n.subMu.Lock()
	defer n.subMu.Unlock()
	for _, evt := range rendered {
		for _, ch := range n.subs {
			select {
			case ch <- evt:
			default:
				metrics.RecordDropped(evt.Type)
			}
		}
	}
}
