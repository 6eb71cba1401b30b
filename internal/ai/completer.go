package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
)

const defaultSystemPrompt = `You are a helpful assistant.
When displaying dates and times:
- Always include both date and time if available in the format DD-MMM-YYYY HH:mm
- Use 24-hour format for time

For questions about total counts:
- Return the actual count of items in the provided context
- Be precise with numbers

Ensure all relevant information from the context is included in your responses.`

type CompleterConfig struct {
	Timeout       int
	MaxInputChars int
}

// Completer turns (retrieved context, user query, system prompt, rendered
// history) into one generation call. The prompt template is owned here:
// context comes before the live query, the query before prior-turn history.
type Completer struct {
	generator IGenerator
	cfg       CompleterConfig
}

func NewCompleter(generator IGenerator, cfg CompleterConfig) *Completer {
	return &Completer{generator: generator, cfg: cfg}
}

func (c *Completer) Complete(ctx context.Context, systemPrompt string, contextItems []map[string]interface{}, userQuery string, historyText string) (string, error) {
	if c.generator == nil {
		return "", ErrUnavailable
	}
	if c.cfg.MaxInputChars > 0 && len(userQuery) > c.cfg.MaxInputChars {
		return "", fmt.Errorf("%w: query exceeds %d chars", appErr.ErrInvalid, c.cfg.MaxInputChars)
	}
	prompt := c.buildPrompt(systemPrompt, contextItems, userQuery, historyText)
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Second)
		defer cancel()
	}
	resp, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(resp)
	if answer == "" {
		return "", fmt.Errorf("empty ai response")
	}
	return answer, nil
}

func (c *Completer) buildPrompt(systemPrompt string, contextItems []map[string]interface{}, userQuery string, historyText string) string {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	contextText := renderContext(contextItems)

	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nUsing the following context: ")
	sb.WriteString(contextText)
	sb.WriteString("\n\nAnswer: ")
	sb.WriteString(userQuery)
	if strings.TrimSpace(historyText) != "" {
		sb.WriteString("\n\nConversation so far:\n")
		sb.WriteString(historyText)
	}
	return sb.String()
}

func renderContext(items []map[string]interface{}) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Sprintf("%v", items)
	}
	return string(data)
}
