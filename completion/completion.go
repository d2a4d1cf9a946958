// Package completion defines the provider-neutral structured completion boundary:
// a model id plus role-tagged messages in, one text completion out.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

// Role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Params are the sampling controls sent with every request.
type Params struct {
	MaxTokens        int32   `json:"max_tokens"`
	Temperature      float32 `json:"temperature"`
	TopP             float32 `json:"top_p"`
	FrequencyPenalty float32 `json:"frequency_penalty"`
	PresencePenalty  float32 `json:"presence_penalty"`
}

// StructuredParams bias toward varied but well-formed structured text.
var StructuredParams = Params{
	MaxTokens:        1250,
	Temperature:      1,
	TopP:             0.9,
	FrequencyPenalty: 0.5,
	PresencePenalty:  0.5,
}

// Request is a single completion call against one model.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Params   Params    `json:"params"`
}

// Client sends one request and returns the raw completion text. Implementations do not
// retry; failures are returned as *TransportError.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (string, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// NewStructuredRequest builds a request from a system prompt, a user prompt and format
// instructions for the target schema.
func NewStructuredRequest(system, user, schemaInstructions, model string) Request {
	msgs := []Message{{Role: RoleSystem, Content: system}}
	if user != "" {
		msgs = append(msgs, Message{Role: RoleUser, Content: user})
	}
	if schemaInstructions != "" {
		msgs = append(msgs, Message{Role: RoleUser, Content: schemaInstructions})
	}
	return Request{Model: model, Messages: msgs, Params: StructuredParams}
}

// FormatInstructions renders a schema as instructions the model can follow.
func FormatInstructions(schema *jsonschema.Schema) string {
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		// schemas are built in code; a marshal failure is a programming error
		panic(fmt.Sprintf("completion: marshal schema: %v", err))
	}

	var sb strings.Builder
	sb.WriteString("The output should be formatted as a JSON instance that conforms to the JSON schema below.\n")
	sb.WriteString("Return ONLY the JSON object: no explanations, no markdown, no trailing commas.\n\n")
	sb.WriteString("```\n")
	sb.Write(b)
	sb.WriteString("\n```")
	return sb.String()
}
