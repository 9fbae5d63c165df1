package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pixperk/handset/pkg/logging"
	"github.com/pixperk/handset/pkg/types"
	"nhooyr.io/websocket"
)

const (
	defaultSubscriberBuffer = 32
	writeTimeout            = 5 * time.Second
)

// Hub streams events to websocket subscribers.
// A subscriber whose buffer is full is disconnected rather than slowing delivery down.
type Hub struct {
	buffer int
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	closed bool
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Hub{
		buffer: buffer,
		logger: logging.Ensure(logger).With("component", "hub"),
		subs:   make(map[chan []byte]struct{}),
	}
}

func (h *Hub) Name() string { return "websocket" }

func (h *Hub) Notify(_ context.Context, ev types.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("hub encode event: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			delete(h.subs, ch)
			close(ch)
			h.logger.Warn("dropping slow subscriber")
		}
	}
	return nil
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe() (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}
	ch := make(chan []byte, h.buffer)
	h.subs[ch] = struct{}{}
	return ch, true
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	ch, ok := h.subscribe()
	if !ok {
		conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	defer h.unsubscribe(ch)

	// we never read from subscribers, CloseRead handles control frames
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-ch:
			if !open {
				conn.Close(websocket.StatusPolicyViolation, "subscriber too slow or hub closed")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
