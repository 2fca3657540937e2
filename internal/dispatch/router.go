// Package dispatch routes inbound JSON-RPC requests to handlers and
// frames their results, isolating handler failures from the read loop.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haasonsaas/skillrt/internal/frame"
)

// HandlerFunc handles one inbound method call. Returning an error
// produces a -32603 response; the error's message is included verbatim,
// matching the runtime's "all handler failures map to a single generic
// internal error code" policy.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Router maps method names to handlers.
type Router struct {
	handlers map[string]HandlerFunc
}

// NewRouter builds an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Handle registers a handler for method, overwriting any prior one.
func (r *Router) Handle(method string, h HandlerFunc) {
	r.handlers[method] = h
}

const internalErrorCode = -32603

// Dispatch invokes the handler registered for msg.Method. If msg has an
// ID, the handler's result or error is written as a single response
// frame via w. If msg has no ID (a notification), errors are reported
// to onNotificationError instead of being framed — there is no
// response to carry them.
func Dispatch(ctx context.Context, r *Router, w *frame.Writer, msg *frame.Message, onNotificationError func(method string, err error)) {
	h, ok := r.handlers[msg.Method]
	if !ok {
		if msg.ID != nil {
			writeError(w, msg.ID, fmt.Sprintf("Unknown method: %s", msg.Method))
		} else if onNotificationError != nil {
			onNotificationError(msg.Method, fmt.Errorf("unknown method: %s", msg.Method))
		}
		return
	}

	result, err := safeInvoke(ctx, h, msg.Params)
	if msg.ID == nil {
		if err != nil && onNotificationError != nil {
			onNotificationError(msg.Method, err)
		}
		return
	}
	if err != nil {
		writeError(w, msg.ID, err.Error())
		return
	}
	writeResult(w, msg.ID, result)
}

func safeInvoke(ctx context.Context, h HandlerFunc, params json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, params)
}

func writeResult(w *frame.Writer, id json.RawMessage, result any) {
	_ = w.Write(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"result":  result,
	})
}

func writeError(w *frame.Writer, id json.RawMessage, message string) {
	_ = w.Write(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id),
		"error":   frame.Error{Code: internalErrorCode, Message: message},
	})
}
