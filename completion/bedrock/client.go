// Package bedrock is a completion provider backed by the Amazon Bedrock Converse API.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"barkeep/completion"
)

const provider = "bedrock"

// defaultModelID is an inference profile ID, not the foundation model's ID.
// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
const defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Client struct {
	brc bedrockRuntimeClient
}

func NewClient(brc bedrockRuntimeClient) *Client {
	return &Client{brc: brc}
}

// Complete converts the request into a Converse call. System messages become system
// blocks; everything else is sent in order as user or assistant turns.
func (c *Client) Complete(ctx context.Context, req completion.Request) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "provider", provider, "model", req.Model, "messages_len", len(req.Messages))

	modelID := req.Model
	if modelID == "" {
		modelID = defaultModelID
	}

	var sys []types.SystemContentBlock
	var msgs []types.Message
	for _, m := range req.Messages {
		switch m.Role {
		case completion.RoleSystem:
			sys = append(sys, &types.SystemContentBlockMemberText{Value: m.Content})
		case completion.RoleAssistant:
			msgs = appendTurn(msgs, types.ConversationRoleAssistant, m.Content)
		default:
			msgs = appendTurn(msgs, types.ConversationRoleUser, m.Content)
		}
	}

	inference := &types.InferenceConfiguration{
		Temperature: aws.Float32(req.Params.Temperature),
	}
	if req.Params.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(req.Params.MaxTokens)
	}
	if req.Params.TopP > 0 {
		inference.TopP = aws.Float32(req.Params.TopP)
	}

	out, err := c.brc.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(modelID),
		System:          sys,
		Messages:        msgs,
		InferenceConfig: inference,
	})
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock invoke failed", "error", err, "model", modelID)
		return "", completion.NewTransportError(provider, modelID, 0, err)
	}

	attrs := []any{"stop_reason", out.StopReason}
	if out.Usage != nil {
		attrs = append(attrs, "input_tokens", aws.ToInt32(out.Usage.InputTokens), "output_tokens", aws.ToInt32(out.Usage.OutputTokens))
	}
	if out.Metrics != nil {
		attrs = append(attrs, "latency_ms", aws.ToInt64(out.Metrics.LatencyMs))
	}
	slog.Info("LLM_CLIENT: Bedrock invoke succeeded", attrs...)

	switch out.StopReason {
	case types.StopReasonMaxTokens:
		slog.Warn("LLM_CLIENT: Model hit MaxTokens limit")
		return "", completion.NewTransportError(provider, modelID, 0, errors.New("model hit MaxTokens limit"))
	case types.StopReasonGuardrailIntervened, types.StopReasonContentFiltered:
		slog.Warn("LLM_CLIENT: Model response blocked by Bedrock safety filters")
		return "", completion.NewTransportError(provider, modelID, 0, errors.New("model response blocked by Bedrock safety filters"))
	}

	text := textFromOutput(out)
	if text == "" {
		return "", completion.NewTransportError(provider, modelID, 0, fmt.Errorf("empty response (stop reason %q)", out.StopReason))
	}
	return text, nil
}

// appendTurn merges consecutive same-role messages, which Converse rejects.
func appendTurn(msgs []types.Message, role types.ConversationRole, text string) []types.Message {
	block := &types.ContentBlockMemberText{Value: text}
	if n := len(msgs); n > 0 && msgs[n-1].Role == role {
		msgs[n-1].Content = append(msgs[n-1].Content, block)
		return msgs
	}
	return append(msgs, types.Message{Role: role, Content: []types.ContentBlock{block}})
}

// textFromOutput returns the last text block that looks like a JSON object, or all
// text blocks joined with '\n'.
func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil || len(msg.Value.Content) == 0 {
		return ""
	}

	texts := make([]string, 0, len(msg.Value.Content))
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t != nil && t.Value != "" {
			texts = append(texts, t.Value)
		}
	}
	for i := len(texts) - 1; i >= 0; i-- {
		s := strings.TrimSpace(texts[i])
		if len(s) > 1 && s[0] == '{' && s[len(s)-1] == '}' {
			return s
		}
	}
	return strings.Join(texts, "\n")
}
