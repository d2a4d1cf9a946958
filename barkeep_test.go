package barkeep_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"barkeep"
)

func TestSplitModels(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"openai/gpt-4o", []string{"openai/gpt-4o"}},
		{" openai/gpt-4o-mini ; ;ollama/llama3.2;", []string{"openai/gpt-4o-mini", "ollama/llama3.2"}},
	}
	for _, tt := range tests {
		should.Equal(t, tt.want, barkeep.SplitModels(tt.in), "input %q", tt.in)
	}
}

func TestNewAttemptLogFilePath(t *testing.T) {
	p := barkeep.NewAttemptLogFilePath("logs", "s1", "Recipe Create")
	should.Equal(t, "logs", filepath.Dir(p))
	should.True(t, strings.HasSuffix(p, ".recipe_create.s1.json"), p)
}

func TestFileAttemptLogger(t *testing.T) {
	var buf bytes.Buffer
	l := barkeep.NewFileAttemptLogger(&buf)

	must.NoError(t, l.LogAttempt(barkeep.AttemptLog{Attempt: 1, Task: "recipe", Model: "openai/gpt-4o-mini", Outcome: barkeep.OutcomeTransportError}))
	must.NoError(t, l.LogAttempt(barkeep.AttemptLog{Attempt: 2, Task: "recipe", Model: "openai/gpt-4o", Outcome: barkeep.OutcomeSuccess}))
	should.Len(t, l.Attempts(), 2)
	should.Zero(t, buf.Len(), "attempts are buffered until Flush")

	must.NoError(t, l.Flush())
	var got struct {
		GenerationSession struct {
			Attempts []barkeep.AttemptLog `json:"attempts"`
		} `json:"generation_session"`
	}
	must.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	must.Len(t, got.GenerationSession.Attempts, 2)
	should.Equal(t, barkeep.OutcomeSuccess, got.GenerationSession.Attempts[1].Outcome)
	should.Empty(t, l.Attempts())
}

func TestFileAttemptLogger_NilWriter(t *testing.T) {
	l := barkeep.NewFileAttemptLogger(nil)
	must.NoError(t, l.LogAttempt(barkeep.AttemptLog{Attempt: 1}))
	should.NoError(t, l.Flush())
}

func TestInitOtel_Disabled(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")

	shutdown, err := barkeep.InitOtel(context.Background())
	must.NoError(t, err)
	should.NoError(t, shutdown(context.Background()))
}
