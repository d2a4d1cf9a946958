// Package mock is a scripted completion provider for tests and offline runs.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"barkeep/completion"
)

// Reply is one scripted outcome: either Content or Err.
type Reply struct {
	Content string
	Err     error
}

// Client replays scripted replies per model in order. The last reply for a model
// repeats once its script is exhausted. Unscripted models fall back to Default.
type Client struct {
	mu      sync.Mutex
	scripts map[string][]Reply
	Default *Reply
	calls   []completion.Request
}

func NewClient() *Client {
	return &Client{scripts: map[string][]Reply{}}
}

// On appends replies for model.
func (c *Client) On(model string, replies ...Reply) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[model] = append(c.scripts[model], replies...)
	return c
}

func (c *Client) Complete(ctx context.Context, req completion.Request) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	script := c.scripts[req.Model]
	var r *Reply
	switch {
	case len(script) > 1:
		r = &script[0]
		c.scripts[req.Model] = script[1:]
	case len(script) == 1:
		r = &script[0]
	default:
		r = c.Default
	}
	c.mu.Unlock()

	slog.Debug("LLM_CLIENT: Mock invoked", "model", req.Model)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r == nil {
		return "", completion.NewTransportError("mock", req.Model, 0, fmt.Errorf("no scripted reply"))
	}
	if r.Err != nil {
		return "", r.Err
	}
	return r.Content, nil
}

// Calls returns every request seen so far.
func (c *Client) Calls() []completion.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]completion.Request(nil), c.calls...)
}

// Models returns the model of every request seen so far, in order.
func (c *Client) Models() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	for i, r := range c.calls {
		out[i] = r.Model
	}
	return out
}
