package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	prompt string
	answer string
	err    error
	calls  int
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	return g.answer, g.err
}

func TestCompleterPromptOrdering(t *testing.T) {
	gen := &stubGenerator{answer: "fine"}
	completer := NewCompleter(gen, CompleterConfig{})

	contextItems := []map[string]interface{}{
		{"title": "The Future of AI"},
	}
	answer, err := completer.Complete(context.Background(), "You are a conference assistant.", contextItems, "what is on?", "Human: hi\nAssistant: hello")
	require.NoError(t, err)
	require.Equal(t, "fine", answer)
	require.Equal(t, 1, gen.calls)

	prompt := gen.prompt
	require.True(t, strings.HasPrefix(prompt, "You are a conference assistant."))
	ctxPos := strings.Index(prompt, "The Future of AI")
	queryPos := strings.Index(prompt, "what is on?")
	historyPos := strings.Index(prompt, "Human: hi")
	require.True(t, ctxPos >= 0 && queryPos >= 0 && historyPos >= 0)
	// context before the live query, query before prior-turn history
	require.True(t, ctxPos < queryPos)
	require.True(t, queryPos < historyPos)
}

func TestCompleterEmptyHistoryOmitted(t *testing.T) {
	gen := &stubGenerator{answer: "ok"}
	completer := NewCompleter(gen, CompleterConfig{})
	_, err := completer.Complete(context.Background(), "prompt", nil, "query", "")
	require.NoError(t, err)
	require.NotContains(t, gen.prompt, "Conversation so far")
	require.Contains(t, gen.prompt, "[]")
}

func TestCompleterDefaultSystemPrompt(t *testing.T) {
	gen := &stubGenerator{answer: "ok"}
	completer := NewCompleter(gen, CompleterConfig{})
	_, err := completer.Complete(context.Background(), "  ", nil, "query", "")
	require.NoError(t, err)
	require.Contains(t, gen.prompt, "You are a helpful assistant.")
}

func TestCompleterEmptyResponse(t *testing.T) {
	gen := &stubGenerator{answer: "   "}
	completer := NewCompleter(gen, CompleterConfig{})
	_, err := completer.Complete(context.Background(), "p", nil, "q", "")
	require.Error(t, err)
}

func TestCompleterMaxInputChars(t *testing.T) {
	gen := &stubGenerator{answer: "ok"}
	completer := NewCompleter(gen, CompleterConfig{MaxInputChars: 5})
	_, err := completer.Complete(context.Background(), "p", nil, "too long query", "")
	require.Error(t, err)
	require.Equal(t, 0, gen.calls)
}
