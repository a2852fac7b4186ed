package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"prose-server/internal/types"
)

// FeedbackForwarder streams confirmed feedback submissions to the reliability
// tuner over a websocket. Events queue on a buffered channel; when the buffer
// is full the event is dropped and counted rather than blocking a request.
// The connection reconnects with capped exponential backoff.
type FeedbackForwarder struct {
	url    string
	events chan types.FeedbackSubmission
	cancel context.CancelFunc
}

const (
	forwarderBufferSize  = 256
	forwarderWriteWait   = 10 * time.Second
	forwarderMaxBackoff  = 2 * time.Minute
	forwarderBaseBackoff = time.Second
)

// NewFeedbackForwarder starts a forwarder for the given stream URL.
// Returns nil when url is empty; callers treat a nil forwarder as disabled.
func NewFeedbackForwarder(url string) *FeedbackForwarder {
	if url == "" {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	f := &FeedbackForwarder{
		url:    url,
		events: make(chan types.FeedbackSubmission, forwarderBufferSize),
		cancel: cancel,
	}
	go f.run(ctx)
	return f
}

// Send queues one submission. Never blocks; a full buffer drops the event.
func (f *FeedbackForwarder) Send(sub types.FeedbackSubmission) {
	select {
	case f.events <- sub:
	default:
		IncrementFeedbackEventsDropped()
		slog.Warn("feedback stream buffer full, event dropped", "error_id", sub.ErrorID)
	}
}

// Close stops the forwarder. Queued events not yet written are discarded.
func (f *FeedbackForwarder) Close() {
	f.cancel()
}

func (f *FeedbackForwarder) run(ctx context.Context) {
	backoff := forwarderBaseBackoff
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("feedback stream connect failed", "url", f.url, "backoff", backoff, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > forwarderMaxBackoff {
				backoff = forwarderMaxBackoff
			}
			continue
		}

		slog.Info("feedback stream connected", "url", f.url)
		backoff = forwarderBaseBackoff

		if err := f.writeLoop(ctx, conn); err != nil {
			slog.Warn("feedback stream write failed, reconnecting", "error", err)
		}
		conn.Close()

		if ctx.Err() != nil {
			return
		}
	}
}

// writeLoop drains the event channel onto one connection until it breaks.
func (f *FeedbackForwarder) writeLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return nil
		case sub := <-f.events:
			conn.SetWriteDeadline(time.Now().Add(forwarderWriteWait))
			if err := conn.WriteJSON(sub); err != nil {
				// The event is lost with the connection; the backend POST
				// path is the durable one.
				IncrementFeedbackEventsDropped()
				return err
			}
		}
	}
}
