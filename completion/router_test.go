package completion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barkeep/completion"
	"barkeep/completion/mock"
)

func TestRouter_Complete(t *testing.T) {
	openai := mock.NewClient().On("gpt-4o-mini", mock.Reply{Content: "from openai"})
	ollama := mock.NewClient().On("llama3.1", mock.Reply{Content: "from ollama"})
	r := completion.NewRouter("openai").Register("openai", openai).Register("ollama", ollama)

	tests := []struct {
		name   string
		model  string
		want   string
		client *mock.Client
		local  string
	}{
		{name: "explicit openai prefix", model: "openai/gpt-4o-mini", want: "from openai", client: openai, local: "gpt-4o-mini"},
		{name: "ollama prefix", model: "ollama/llama3.1", want: "from ollama", client: ollama, local: "llama3.1"},
		{name: "bare id goes to default", model: "gpt-4o-mini", want: "from openai", client: openai, local: "gpt-4o-mini"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Complete(context.Background(), completion.Request{Model: tt.model})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			calls := tt.client.Calls()
			require.NotEmpty(t, calls)
			assert.Equal(t, tt.local, calls[len(calls)-1].Model)
		})
	}
}

func TestRouter_UnknownProviderKeepsFullID(t *testing.T) {
	def := mock.NewClient()
	def.Default = &mock.Reply{Content: "ok"}
	r := completion.NewRouter("openai").Register("openai", def)

	_, err := r.Complete(context.Background(), completion.Request{Model: "meta/llama-3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"meta/llama-3"}, def.Models())
}

func TestRouter_NoDefaultProvider(t *testing.T) {
	r := completion.NewRouter("openai")
	_, err := r.Complete(context.Background(), completion.Request{Model: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, completion.ErrTransport))
}

func TestNewStructuredRequest(t *testing.T) {
	req := completion.NewStructuredRequest("sys", "user", "schema", "openai/gpt-4o")
	require.Len(t, req.Messages, 3)
	assert.Equal(t, completion.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "user", req.Messages[1].Content)
	assert.Equal(t, "schema", req.Messages[2].Content)
	assert.Equal(t, completion.StructuredParams, req.Params)
}

func TestTransportError_Is(t *testing.T) {
	err := completion.NewTransportError("openai", "gpt-4o", 502, errors.New("bad gateway"))
	assert.ErrorIs(t, err, completion.ErrTransport)

	var te *completion.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 502, te.StatusCode)
}
