package etforacle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
)

type openAIGenerator struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

func newOpenAIGenerator(apiKey, model, baseURL string, logger *slog.Logger) *openAIGenerator {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(apiKey)),
		openaioption.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(baseURL))
	}
	return &openAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}
}

// Generate uses chat completions with web_search_options; URL citation
// annotations become sources.
func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (Generation, error) {
	logPromptDebug(g.logger, ProviderOpenAI, g.model, prompt)

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		WebSearchOptions: openai.ChatCompletionNewParamsWebSearchOptions{
			SearchContextSize: "medium",
		},
	})
	if err != nil {
		return Generation{}, fmt.Errorf("openai chat completion failed: %w", err)
	}

	model := strings.TrimSpace(completion.Model)
	if model == "" {
		model = g.model
	}
	if len(completion.Choices) == 0 {
		return Generation{Model: model}, nil
	}

	message := completion.Choices[0].Message
	var sources []Source
	for _, annotation := range message.Annotations {
		if annotation.Type != "url_citation" {
			continue
		}
		sources = append(sources, Source{
			Title: annotation.URLCitation.Title,
			URI:   annotation.URLCitation.URL,
		})
	}
	return Generation{Text: message.Content, Model: model, Sources: sources}, nil
}
