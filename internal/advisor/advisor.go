// Package advisor generates natural-language seating advice with Claude.
package advisor

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/neonwatty/seatify-sub000/internal/models"
)

// Advisor reviews an optimization result and suggests roster changes.
type Advisor interface {
	Suggest(ctx context.Context, guests []models.Guest, tables []models.Table, result models.OptimizationResult) (string, error)
}

// ClaudeAdvisor uses Claude to review seating charts.
type ClaudeAdvisor struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

// NewClaudeAdvisor creates a new Claude-based seating advisor.
func NewClaudeAdvisor(apiKey, model string, logger *slog.Logger) *ClaudeAdvisor {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeAdvisor{
		client: &client,
		model:  model,
		logger: logger,
	}
}

// advicePromptTemplate is the base prompt; roster data is injected via XML
// tags to prevent prompt injection from guest-supplied names.
const advicePromptTemplate = `You are an event seating consultant. Review the seating chart below and suggest concrete improvements the planner could make.

Consider:
- Guests left unseated and which tables could absorb them
- Reported violations and how to resolve them (extra tables, moved guests, relaxed constraints)
- Conversation quality: shared interests and industries at each table

Be brief and practical. Respond with a short bulleted list.

<seating_chart>
%s
</seating_chart>

<violations>
%s
</violations>

Score: %.0f/100

Suggestions:`

// Suggest renders the roster and result into a prompt and asks Claude for
// planner-facing advice.
func (a *ClaudeAdvisor) Suggest(ctx context.Context, guests []models.Guest, tables []models.Table, result models.OptimizationResult) (string, error) {
	prompt := fmt.Sprintf(advicePromptTemplate,
		renderChart(guests, tables, result.Assignments),
		renderViolations(result.Violations),
		result.Score,
	)

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
		System: []anthropic.TextBlockParam{
			{Text: "You are a concise event seating consultant. Output plain text only."},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}

	var responseText string
	for _, block := range resp.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	if responseText == "" {
		return "", fmt.Errorf("empty response from Claude")
	}

	a.logger.Debug("claude advice response", "response", responseText)
	return responseText, nil
}

// renderChart formats the assignments as one line per table plus an
// unseated section. Guest names are XML-escaped before injection.
func renderChart(guests []models.Guest, tables []models.Table, assignments map[string]string) string {
	byTable := make(map[string][]string)
	var unseated []string
	for _, g := range guests {
		label := xmlEscape(g.Name)
		if g.Group != "" {
			label += " (" + xmlEscape(g.Group) + ")"
		}
		if tid, ok := assignments[g.ID]; ok {
			byTable[tid] = append(byTable[tid], label)
		} else {
			unseated = append(unseated, label)
		}
	}

	var b strings.Builder
	for _, t := range tables {
		name := t.Name
		if name == "" {
			name = t.ID
		}
		fmt.Fprintf(&b, "%s (capacity %d): %s\n", xmlEscape(name), t.Capacity, strings.Join(byTable[t.ID], ", "))
	}
	if len(unseated) > 0 {
		fmt.Fprintf(&b, "Unseated: %s\n", strings.Join(unseated, ", "))
	}
	return b.String()
}

func renderViolations(violations []models.Violation) string {
	if len(violations) == 0 {
		return "none"
	}
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, "- "+xmlEscape(v.Message))
	}
	return strings.Join(msgs, "\n")
}

// xmlEscape replaces characters that have special meaning in XML to prevent
// prompt injection when embedding guest-supplied content in XML-delimited
// templates.
func xmlEscape(s string) string {
	var buf strings.Builder
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
