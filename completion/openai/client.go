// Package openai is a completion provider for OpenAI-compatible chat-completions endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"barkeep"
	"barkeep/completion"
)

const provider = "openai"

type Client struct {
	endpoint     string
	apiKey       string
	organization string
	httpClient   barkeep.HTTPClient
}

type ClientOpts struct {
	BaseURL      string
	APIKey       string
	Organization string
	HTTPClient   barkeep.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	return &Client{
		endpoint:     strings.TrimSuffix(opts.BaseURL, "/") + "/chat/completions",
		apiKey:       opts.APIKey,
		organization: opts.Organization,
		httpClient:   opts.HTTPClient,
	}, nil
}

type wireRequest struct {
	Model            string               `json:"model"`
	Messages         []completion.Message `json:"messages"`
	MaxTokens        int32                `json:"max_tokens,omitempty"`
	Temperature      float32              `json:"temperature"`
	TopP             float32              `json:"top_p,omitempty"`
	FrequencyPenalty float32              `json:"frequency_penalty,omitempty"`
	PresencePenalty  float32              `json:"presence_penalty,omitempty"`
	N                int                  `json:"n"`
}

type wireResponse struct {
	Choices []struct {
		Message      completion.Message `json:"message"`
		FinishReason string             `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends one chat-completions request and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req completion.Request) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "provider", provider, "model", req.Model, "messages_len", len(req.Messages))

	body, err := json.Marshal(wireRequest{
		Model:            req.Model,
		Messages:         req.Messages,
		MaxTokens:        req.Params.MaxTokens,
		Temperature:      req.Params.Temperature,
		TopP:             req.Params.TopP,
		FrequencyPenalty: req.Params.FrequencyPenalty,
		PresencePenalty:  req.Params.PresencePenalty,
		N:                1,
	})
	if err != nil {
		return "", completion.NewTransportError(provider, req.Model, 0, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", completion.NewTransportError(provider, req.Model, 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", c.organization)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", completion.NewTransportError(provider, req.Model, 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", completion.NewTransportError(provider, req.Model, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", completion.NewTransportError(provider, req.Model, resp.StatusCode, fmt.Errorf("%s: %s", resp.Status, string(respBody)))
	}

	var wr wireResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return "", completion.NewTransportError(provider, req.Model, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if len(wr.Choices) == 0 {
		return "", completion.NewTransportError(provider, req.Model, resp.StatusCode, errors.New("empty response (no choices)"))
	}

	slog.Info("LLM_CLIENT: Completion received",
		"provider", provider,
		"model", req.Model,
		"finish_reason", wr.Choices[0].FinishReason,
		"input_tokens", wr.Usage.PromptTokens,
		"output_tokens", wr.Usage.CompletionTokens,
	)
	return wr.Choices[0].Message.Content, nil
}
