package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/marketbrief/marketbrief/internal/fault"
	"github.com/marketbrief/marketbrief/internal/models"
)

const analystSystemPrompt = `You are a senior financial analyst specializing in US market analysis.
You produce concise, factual market summaries for traders and investors.
Respond with a single JSON object and nothing else. The object must have exactly these fields:
"indices": array of objects with "name" (string), "value" (number), "change_pct" (number);
"headlines": array of 3-4 strings, the most important financial stories of the day with their market impact;
"movers": object with "gainers" and "losers", each an array of up to 3 strings naming the stock, its move in percent, and the reason;
"outlook": array of strings listing tomorrow's earnings, economic releases and events traders should watch.
Use specific numbers and percentages. Do not wrap the JSON in markdown fences.`

type analysisInput struct {
	Documents  []models.NewsDocument
	Indices    []models.IndexQuote
	Corrective string
	Previous   string
}

// Analyst turns a candidate document set into a structured MarketSummary
// through one completion call.
type Analyst struct {
	chain compose.Runnable[analysisInput, *schema.Message]
	log   *logrus.Entry
}

func NewAnalyst(ctx context.Context, cm model.BaseChatModel, log *logrus.Entry) (*Analyst, error) {
	chain := compose.NewChain[analysisInput, *schema.Message]()
	chain.AppendLambda(compose.InvokableLambda(buildAnalysisMessages))
	chain.AppendChatModel(cm)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile analyst chain: %w", err)
	}

	return &Analyst{chain: runnable, log: log}, nil
}

func buildAnalysisMessages(ctx context.Context, in analysisInput) ([]*schema.Message, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Today is %s. Create the daily US market summary.\n\n", time.Now().Format("2006-01-02"))

	if len(in.Indices) > 0 {
		sb.WriteString("Current index levels (authoritative, use these exact values):\n")
		for _, q := range in.Indices {
			fmt.Fprintf(&sb, "- %s: %s (%s%%)\n", q.Name, q.Value.String(), q.ChangePct.String())
		}
		sb.WriteString("\n")
	}

	sb.WriteString("News gathered today:\n")
	for i, d := range in.Documents {
		fmt.Fprintf(&sb, "%d. %s", i+1, d.Title)
		if d.Source != "" {
			fmt.Fprintf(&sb, " (%s)", d.Source)
		}
		sb.WriteString("\n")
		if d.Snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", d.Snippet)
		}
	}

	messages := []*schema.Message{
		schema.SystemMessage(analystSystemPrompt),
		schema.UserMessage(sb.String()),
	}

	if in.Corrective != "" {
		messages = append(messages,
			schema.AssistantMessage(in.Previous, nil),
			schema.UserMessage(in.Corrective),
		)
	}

	return messages, nil
}

// Analyze runs the completion and parses the structured summary. A shape
// mismatch gets one corrective retry; a second mismatch degrades to a
// summary carrying the raw completion text so the run can continue.
func (a *Analyst) Analyze(ctx context.Context, docs []models.NewsDocument, indices []models.IndexQuote) (models.MarketSummary, error) {
	in := analysisInput{Documents: docs, Indices: indices}

	resp, err := a.chain.Invoke(ctx, in)
	if err != nil {
		return models.MarketSummary{}, &fault.TransportError{Op: "analysis", Err: err}
	}

	summary, perr := parseSummary(resp.Content)
	if perr == nil {
		return summary, nil
	}

	a.log.Warnf("summary failed validation, retrying with correction: %v", perr)
	in.Corrective = "Your previous response could not be parsed into the required JSON shape. " +
		"Respond again with only the JSON object described in the instructions, no prose, no markdown fences."
	in.Previous = resp.Content

	resp2, err := a.chain.Invoke(ctx, in)
	if err != nil {
		return models.MarketSummary{}, &fault.TransportError{Op: "analysis", Err: err}
	}

	summary, perr = parseSummary(resp2.Content)
	if perr == nil {
		return summary, nil
	}

	a.log.Warnf("summary failed validation twice, degrading to raw text: %v", perr)
	return degradedSummary(resp2.Content, resp.Content), nil
}

func parseSummary(content string) (models.MarketSummary, error) {
	raw := extractJSON(content)
	if raw == "" {
		return models.MarketSummary{}, &fault.ValidationError{Stage: "analysis", Reason: "no JSON object in response"}
	}

	var summary models.MarketSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return models.MarketSummary{}, &fault.ValidationError{Stage: "analysis", Reason: err.Error()}
	}
	if len(summary.Headlines) == 0 {
		return models.MarketSummary{}, &fault.ValidationError{Stage: "analysis", Reason: "no headlines"}
	}
	return summary, nil
}

// extractJSON cuts the outermost JSON object out of a completion that may be
// wrapped in prose or markdown fences.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func degradedSummary(latest, first string) models.MarketSummary {
	text := strings.TrimSpace(latest)
	if text == "" {
		text = strings.TrimSpace(first)
	}
	return models.MarketSummary{
		Headlines: []string{text},
		Degraded:  true,
	}
}
