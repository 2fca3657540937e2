// Package reverse implements the runtime's outbound calls to the host:
// id allocation, pending-reply correlation, and per-call timeouts.
package reverse

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haasonsaas/skillrt/internal/frame"
)

// DefaultTimeout is used by Call when the caller does not override it.
const DefaultTimeout = 30 * time.Second

// SummarizationTimeout is the longer budget request_summarization uses.
const SummarizationTimeout = 120 * time.Second

// RemoteError wraps the error object a reverse-RPC reply carried.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("reverse rpc error %d: %s", e.Code, e.Message)
}

type pending struct {
	ch chan reply
}

type reply struct {
	result json.RawMessage
	err    error
}

// Client issues reverse-RPC calls and notifications to the host over a
// frame.Writer, correlating replies delivered (inline, from the read
// loop) via HandleReply.
type Client struct {
	writer *frame.Writer
	nextID atomic.Int64

	mu      sync.Mutex
	pending map[int64]*pending
}

// NewClient builds a reverse-RPC client writing frames to w.
func NewClient(w *frame.Writer) *Client {
	return &Client{
		writer:  w,
		pending: make(map[int64]*pending),
	}
}

// Writer exposes the underlying frame.Writer so a caller that also
// plays the opposite protocol role (e.g. a reference host answering a
// skill's reverse-RPC calls) can write response frames on the same
// guarded writer rather than opening a second one.
func (c *Client) Writer() *frame.Writer {
	return c.writer
}

// Call allocates a request id, writes the request frame, and blocks
// until a matching reply arrives via HandleReply, ctx is cancelled, or
// timeout elapses. On timeout the pending entry is dropped and a late
// reply is silently discarded.
func (c *Client) Call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	id := c.nextID.Add(1)
	p := &pending{ch: make(chan reply, 1)}

	c.mu.Lock()
	c.pending[id] = p
	c.mu.Unlock()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}
	if err := c.writer.Write(msg); err != nil {
		c.drop(id)
		return nil, fmt.Errorf("reverse rpc write: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-p.ch:
		return r.result, r.err
	case <-ctx.Done():
		c.drop(id)
		return nil, ctx.Err()
	case <-timer.C:
		c.drop(id)
		return nil, fmt.Errorf("reverse rpc timeout: %s", method)
	}
}

// Notify writes a one-way notification with no id and no reply tracking.
func (c *Client) Notify(method string, params any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}
	return c.writer.Write(msg)
}

// HandleReply delivers a reverse-RPC reply to its waiting caller, if
// any. It must be called inline from the frame read loop — never from
// a goroutine — so replies are never blocked behind handler work.
// It returns false if msg is not a reply this client issued (unknown or
// already-timed-out id), so the caller can decide how to log it.
func (c *Client) HandleReply(msg *frame.Message) bool {
	if !msg.IsReply() || msg.ID == nil {
		return false
	}
	var id int64
	if err := json.Unmarshal(msg.ID, &id); err != nil {
		return false
	}

	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}

	var r reply
	if msg.Error != nil {
		r.err = &RemoteError{Code: msg.Error.Code, Message: msg.Error.Message}
	} else {
		r.result = msg.Result
	}
	select {
	case p.ch <- r:
	default:
	}
	return true
}

func (c *Client) drop(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
