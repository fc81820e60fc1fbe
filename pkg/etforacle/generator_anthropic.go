package etforacle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicMaxTokens     = 4096
	anthropicMaxSearchUses = 5
)

type anthropicGenerator struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

func newAnthropicGenerator(apiKey, model, baseURL string, logger *slog.Logger) *anthropicGenerator {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(strings.TrimSpace(apiKey)),
		anthropicoption.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(baseURL))
	}
	return &anthropicGenerator{
		client: anthropic.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

// Generate sends the prompt with the web search server tool enabled and
// collects web_search_result_location citations from text blocks.
func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (Generation, error) {
	logPromptDebug(g.logger, ProviderAnthropic, g.model, prompt)

	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{
			{OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses: anthropic.Int(anthropicMaxSearchUses),
			}},
		},
	})
	if err != nil {
		return Generation{}, fmt.Errorf("anthropic messages request failed: %w", err)
	}

	var text strings.Builder
	var sources []Source
	for _, block := range message.Content {
		if block.Type != "text" {
			continue
		}
		text.WriteString(block.Text)
		for _, citation := range block.Citations {
			if citation.Type != "web_search_result_location" {
				continue
			}
			sources = append(sources, Source{Title: citation.Title, URI: citation.URL})
		}
	}

	model := strings.TrimSpace(string(message.Model))
	if model == "" {
		model = g.model
	}
	return Generation{Text: text.String(), Model: model, Sources: sources}, nil
}
