package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barkeep/completion"
)

// mockBedrockClient implements bedrockRuntimeClient for testing
type mockBedrockClient struct {
	response *bedrockruntime.ConverseOutput
	err      error
	input    *bedrockruntime.ConverseInput
}

func (m *mockBedrockClient) Converse(ctx context.Context, input *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = input
	return m.response, m.err
}

func textOutput(stop types.StopReason, texts ...string) *bedrockruntime.ConverseOutput {
	var blocks []types.ContentBlock
	for _, t := range texts {
		blocks = append(blocks, &types.ContentBlockMemberText{Value: t})
	}
	return &bedrockruntime.ConverseOutput{
		StopReason: stop,
		Output:     &types.ConverseOutputMemberMessage{Value: types.Message{Content: blocks}},
		Usage:      &types.TokenUsage{InputTokens: aws.Int32(10), OutputTokens: aws.Int32(20)},
		Metrics:    &types.ConverseMetrics{LatencyMs: aws.Int64(100)},
	}
}

func TestClient_Complete(t *testing.T) {
	req := completion.NewStructuredRequest("sys", "make a drink", "schema here", "us.anthropic.claude-3-5-haiku")

	tests := []struct {
		name     string
		response *bedrockruntime.ConverseOutput
		err      error
		want     string
		wantErr  bool
	}{
		{
			name:     "json block preferred",
			response: textOutput(types.StopReasonEndTurn, "Here you go:", `{"name":"Negroni"}`),
			want:     `{"name":"Negroni"}`,
		},
		{
			name:     "plain text joined",
			response: textOutput(types.StopReasonEndTurn, "line one", "line two"),
			want:     "line one\nline two",
		},
		{
			name:     "max tokens",
			response: textOutput(types.StopReasonMaxTokens, `{"name":`),
			wantErr:  true,
		},
		{
			name:     "content filtered",
			response: textOutput(types.StopReasonContentFiltered),
			wantErr:  true,
		},
		{
			name:     "empty output",
			response: textOutput(types.StopReasonEndTurn),
			wantErr:  true,
		},
		{
			name:    "converse error",
			err:     errors.New("throttled"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brc := &mockBedrockClient{response: tt.response, err: tt.err}
			got, err := NewClient(brc).Complete(context.Background(), req)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, completion.ErrTransport)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.NotNil(t, brc.input)
			assert.Len(t, brc.input.System, 1)
			// the two user messages collapse into one turn
			require.Len(t, brc.input.Messages, 1)
			assert.Len(t, brc.input.Messages[0].Content, 2)
			assert.Equal(t, int32(1250), aws.ToInt32(brc.input.InferenceConfig.MaxTokens))
		})
	}
}

func TestClient_DefaultModel(t *testing.T) {
	brc := &mockBedrockClient{response: textOutput(types.StopReasonEndTurn, "ok")}
	_, err := NewClient(brc).Complete(context.Background(), completion.Request{Messages: []completion.Message{{Role: completion.RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, defaultModelID, aws.ToString(brc.input.ModelId))
}
