// Package push is the WebSocket client for per-thread campaign updates.
//
// The backend exposes one socket per campaign thread at /ws/{thread_id} and
// pushes JSON frames tagged with a "type" field (campaign_updated,
// reply_received, ping, ...). The Channel fans frames out to subscribed
// handlers by category. It never reconnects on its own: when the connection
// drops it reports a disconnected event and stops, and the caller decides
// whether to dial again.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Category selects which events a subscription receives.
type Category string

const (
	// CategoryMessage receives every parsed frame from the server,
	// including pings and unrecognized types. Filtering by Event.Type is
	// the subscriber's job.
	CategoryMessage Category = "message"
	// CategoryConnected fires after a successful dial.
	CategoryConnected Category = "connected"
	// CategoryDisconnected fires once per connection teardown, whether the
	// remote closed, the read failed, or Disconnect was called.
	CategoryDisconnected Category = "disconnected"
	// CategoryError receives frame parse failures and abnormal read errors.
	CategoryError Category = "error"
)

// Message types pushed by the backend.
const (
	TypeCampaignStarted  = "campaign_started"
	TypeCampaignUpdated  = "campaign_updated"
	TypeEmailsApproved   = "emails_approved"
	TypeEmailsRejected   = "emails_rejected"
	TypeMeetingScheduled = "meeting_scheduled"
	TypeMeetingDeclined  = "meeting_declined"
	TypeReplyReceived    = "reply_received"
	TypePing             = "ping"
)

// DefaultPingTimeout is how long we wait without receiving any frame before
// treating the connection as dead. The backend pings every ~30s, so 75s
// means at least two missed pings.
var DefaultPingTimeout = 75 * time.Second

// ErrPingTimeout is returned when no frames are received within the ping timeout.
var ErrPingTimeout = errors.New("ping timeout: no frames received")

// maxReadSize caps the maximum WebSocket frame size to 1 MB.
// Campaign update frames are small JSON; anything larger is likely malformed.
const maxReadSize = 1 << 20 // 1 MB

// Event is delivered to subscribed handlers.
type Event struct {
	Category Category
	Type     string          // parsed "type" field, set for message events
	Payload  json.RawMessage // raw frame, set for message events
	Err      error           // set for error events and abnormal disconnects
}

// Handler processes one event. Handlers run on the channel's read goroutine;
// a panic in one handler is recovered and never prevents delivery to others.
type Handler func(Event)

// Subscription is the removal token returned by Subscribe.
type Subscription struct {
	category Category
	fn       Handler
}

// Category returns the category this subscription listens on.
func (s *Subscription) Category() Category {
	return s.category
}

// Channel manages the per-thread WebSocket connection and its subscribers.
type Channel struct {
	baseURL     string
	pingTimeout time.Duration

	mu         sync.Mutex
	subs       map[Category][]*Subscription
	conn       *websocket.Conn
	cancelRead context.CancelFunc
	generation int
	threadID   string
}

// New creates a Channel for the backend at baseURL (http or https; the
// scheme is switched to ws/wss when dialing).
func New(baseURL string) *Channel {
	return &Channel{
		baseURL:     baseURL,
		pingTimeout: DefaultPingTimeout,
		subs:        make(map[Category][]*Subscription),
	}
}

// SetPingTimeout overrides the silent-connection timeout. Zero disables it.
func (c *Channel) SetPingTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pingTimeout = d
}

// Subscribe registers a handler for a category and returns its removal token.
func (c *Channel) Subscribe(cat Category, fn Handler) *Subscription {
	sub := &Subscription{category: cat, fn: fn}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[cat] = append(c.subs[cat], sub)
	return sub
}

// Unsubscribe removes a subscription by identity. Removing an already
// removed (or nil) subscription is a no-op.
func (c *Channel) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.subs[sub.category]
	for i, s := range list {
		if s == sub {
			c.subs[sub.category] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Connect dials the socket for threadID. An existing connection is closed
// first: a new connect supersedes the old one, and frames still in flight
// from the old connection are discarded.
func (c *Channel) Connect(ctx context.Context, threadID string) error {
	wsURL, err := buildWSURL(c.baseURL, threadID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.conn != nil {
		c.closeCurrentLocked()
	}
	c.generation++
	gen := c.generation
	pingTimeout := c.pingTimeout
	c.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	conn.SetReadLimit(maxReadSize)

	readCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	c.mu.Lock()
	if gen != c.generation {
		// Another Connect raced in while we were dialing; it wins.
		c.mu.Unlock()
		cancel()
		_ = conn.CloseNow()
		return nil
	}
	c.conn = conn
	c.cancelRead = cancel
	c.threadID = threadID
	c.mu.Unlock()

	c.dispatch(gen, Event{Category: CategoryConnected})
	go c.readLoop(readCtx, conn, gen, pingTimeout)
	return nil
}

// Disconnect closes the current connection. Safe to call when already
// disconnected. The disconnected event is delivered from the read loop as
// part of the teardown.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCurrentLocked()
}

// Connected reports whether a connection is currently open.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// ThreadID returns the thread of the current (or last) connection.
func (c *Channel) ThreadID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threadID
}

// closeCurrentLocked tears down the active connection. Callers hold c.mu.
func (c *Channel) closeCurrentLocked() {
	if c.conn == nil {
		return
	}
	conn := c.conn
	c.conn = nil
	if c.cancelRead != nil {
		c.cancelRead()
		c.cancelRead = nil
	}
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}

// frame is the minimal shape every backend push shares.
type frame struct {
	Type string `json:"type"`
}

// readLoop reads frames until the connection dies. Message and error events
// are dropped once the connection has been superseded; the disconnected
// event always fires exactly once per connection.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn, gen int, pingTimeout time.Duration) {
	for {
		readCtx := ctx
		var readCancel context.CancelFunc
		if pingTimeout > 0 {
			readCtx, readCancel = context.WithTimeout(ctx, pingTimeout)
		}

		_, data, err := conn.Read(readCtx)

		// Read before cancelling: after readCancel the context always
		// reports an error, which would look like a timeout.
		timedOut := readCtx.Err() == context.DeadlineExceeded
		if readCancel != nil {
			readCancel()
		}

		if err != nil {
			// Distinguish silence from local teardown and remote close.
			if timedOut && ctx.Err() == nil {
				err = ErrPingTimeout
			}
			c.finish(conn, gen, err, ctx.Err() != nil)
			return
		}

		var f frame
		if parseErr := json.Unmarshal(data, &f); parseErr != nil {
			// Malformed frame: report and drop, connection stays up.
			slog.Debug("dropping malformed push frame", "error", parseErr)
			c.dispatch(gen, Event{
				Category: CategoryError,
				Err:      fmt.Errorf("parse frame: %w", parseErr),
			})
			continue
		}

		c.dispatch(gen, Event{
			Category: CategoryMessage,
			Type:     f.Type,
			Payload:  json.RawMessage(data),
		})
	}
}

// finish clears channel state for this connection and emits its teardown
// events. local is true when the teardown came from Disconnect or a
// superseding Connect.
func (c *Channel) finish(conn *websocket.Conn, gen int, err error, local bool) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.cancelRead = nil
	}
	c.mu.Unlock()
	_ = conn.CloseNow()

	event := Event{Category: CategoryDisconnected}
	if !local && !isNormalClosure(err) {
		c.dispatch(gen, Event{Category: CategoryError, Err: err})
		event.Err = err
	}
	c.dispatchAlways(event)
}

func isNormalClosure(err error) bool {
	return websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway
}

// dispatch delivers an event unless the connection was superseded.
func (c *Channel) dispatch(gen int, event Event) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	handlers := c.handlersLocked(event.Category)
	c.mu.Unlock()
	runHandlers(handlers, event)
}

// dispatchAlways delivers an event regardless of generation. Teardown
// notifications use this so a superseded connection still reports its close.
func (c *Channel) dispatchAlways(event Event) {
	c.mu.Lock()
	handlers := c.handlersLocked(event.Category)
	c.mu.Unlock()
	runHandlers(handlers, event)
}

func (c *Channel) handlersLocked(cat Category) []Handler {
	subs := c.subs[cat]
	handlers := make([]Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.fn
	}
	return handlers
}

func runHandlers(handlers []Handler, event Event) {
	for _, fn := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("push handler panicked", "category", event.Category, "panic", r)
				}
			}()
			fn(event)
		}()
	}
}

// buildWSURL converts the backend base URL into the per-thread socket URL:
// http becomes ws, https becomes wss, and the path is /ws/{thread_id}.
func buildWSURL(baseURL, threadID string) (string, error) {
	if threadID == "" {
		return "", errors.New("thread ID cannot be empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws/" + url.PathEscape(threadID)
	u.RawQuery = ""
	return u.String(), nil
}
