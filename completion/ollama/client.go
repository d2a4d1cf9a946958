// Package ollama is a completion provider for a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"barkeep"
	"barkeep/completion"
)

const provider = "ollama"

type options struct {
	Temperature      float32 `json:"temperature"`
	TopP             float32 `json:"top_p,omitempty"`
	NumPredict       int32   `json:"num_predict,omitempty"`
	FrequencyPenalty float32 `json:"frequency_penalty,omitempty"`
	PresencePenalty  float32 `json:"presence_penalty,omitempty"`
	NumCtx           int     `json:"num_ctx,omitempty"`
}

type Client struct {
	endpoint   string
	httpClient barkeep.HTTPClient
	numCtx     int
}

type ClientOpts struct {
	BaseEndpoint string
	HTTPClient   barkeep.HTTPClient
	NumCtx       int
}

func NewClient(opts ClientOpts) (*Client, error) {
	if strings.TrimSpace(opts.BaseEndpoint) == "" {
		return nil, fmt.Errorf("ollama: base endpoint is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.NumCtx == 0 {
		opts.NumCtx = 8192
	}
	return &Client{
		endpoint:   strings.TrimSuffix(opts.BaseEndpoint, "/") + "/api/chat",
		httpClient: opts.HTTPClient,
		numCtx:     opts.NumCtx,
	}, nil
}

type wireRequest struct {
	Model    string               `json:"model"`
	Messages []completion.Message `json:"messages"`
	Stream   bool                 `json:"stream"`
	Options  options              `json:"options"`
}

type wireResponse struct {
	Message    completion.Message `json:"message"`
	DoneReason string             `json:"done_reason"`
}

// Complete sends a non-streaming chat request and returns the message content verbatim.
func (c *Client) Complete(ctx context.Context, req completion.Request) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "provider", provider, "model", req.Model, "messages_len", len(req.Messages))

	reqBytes, err := json.Marshal(wireRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
		Options: options{
			Temperature:      req.Params.Temperature,
			TopP:             req.Params.TopP,
			NumPredict:       req.Params.MaxTokens,
			FrequencyPenalty: req.Params.FrequencyPenalty,
			PresencePenalty:  req.Params.PresencePenalty,
			NumCtx:           c.numCtx,
		},
	})
	if err != nil {
		return "", completion.NewTransportError(provider, req.Model, 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", completion.NewTransportError(provider, req.Model, 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", completion.NewTransportError(provider, req.Model, 0, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", completion.NewTransportError(provider, req.Model, resp.StatusCode, fmt.Errorf("%s: %s", resp.Status, string(body)))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		slog.Warn("LLM_CLIENT: decode failed, returning raw", "err", err, "body", string(body))
		return string(body), nil
	}

	slog.Info("LLM_CLIENT: Completion received", "provider", provider, "model", req.Model, "done_reason", wr.DoneReason)
	return wr.Message.Content, nil
}
