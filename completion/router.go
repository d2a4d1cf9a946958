package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Router dispatches "provider/model" ids to the client registered for that provider.
// Ids without a registered provider prefix go to the default provider unchanged.
type Router struct {
	providers       map[string]Client
	defaultProvider string
}

// NewRouter creates a router with the given default provider name.
func NewRouter(defaultProvider string) *Router {
	return &Router{providers: map[string]Client{}, defaultProvider: defaultProvider}
}

// Register adds a provider client under name.
func (r *Router) Register(name string, c Client) *Router {
	r.providers[name] = c
	return r
}

// Providers lists registered provider names.
func (r *Router) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	return names
}

// Resolve splits a model id into its provider client and provider-local model name.
func (r *Router) Resolve(model string) (string, Client, string, error) {
	if name, local, ok := strings.Cut(model, "/"); ok {
		if c, found := r.providers[name]; found {
			return name, c, local, nil
		}
	}
	c, found := r.providers[r.defaultProvider]
	if !found {
		return "", nil, "", fmt.Errorf("no provider for model %q", model)
	}
	return r.defaultProvider, c, model, nil
}

// Complete routes the request to its provider with the provider-local model name.
func (r *Router) Complete(ctx context.Context, req Request) (string, error) {
	provider, c, local, err := r.Resolve(req.Model)
	if err != nil {
		return "", NewTransportError("router", req.Model, 0, err)
	}
	slog.Debug("ROUTER: Dispatching request", "provider", provider, "model", local)
	req.Model = local
	return c.Complete(ctx, req)
}
