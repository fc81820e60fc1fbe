package etforacle

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiGenerator struct {
	apiKey  string
	model   string
	baseURL string
	logger  *slog.Logger
}

func newGeminiGenerator(apiKey, model, baseURL string, logger *slog.Logger) *geminiGenerator {
	return &geminiGenerator{apiKey: apiKey, model: model, baseURL: baseURL, logger: logger}
}

// Generate calls GenerateContent with Google Search grounding enabled.
// A client is created per call so an empty key fails the request rather
// than startup.
func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (Generation, error) {
	logPromptDebug(g.logger, ProviderGemini, g.model, prompt)

	clientConfig, err := buildGeminiClientConfig(g.baseURL, g.apiKey)
	if err != nil {
		return Generation{}, err
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return Generation{}, fmt.Errorf("create gemini client failed: %w", err)
	}

	requestConfig := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}
	response, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), requestConfig)
	if err != nil {
		return Generation{}, fmt.Errorf("gemini generate content failed: %w", err)
	}

	model := strings.TrimSpace(response.ModelVersion)
	if model == "" {
		model = g.model
	}
	return Generation{
		Text:    geminiResponseText(response),
		Model:   model,
		Sources: geminiGroundingSources(response),
	}, nil
}

// geminiResponseText concatenates the text parts of the first candidate,
// skipping thought parts.
func geminiResponseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return ""
	}
	content := response.Candidates[0].Content
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// geminiGroundingSources maps grounding chunks in API order. A chunk
// without a web entry still yields a Source so the caller can default it.
func geminiGroundingSources(response *genai.GenerateContentResponse) []Source {
	if response == nil || len(response.Candidates) == 0 {
		return nil
	}
	metadata := response.Candidates[0].GroundingMetadata
	if metadata == nil || len(metadata.GroundingChunks) == 0 {
		return nil
	}
	sources := make([]Source, 0, len(metadata.GroundingChunks))
	for _, chunk := range metadata.GroundingChunks {
		var source Source
		if chunk != nil && chunk.Web != nil {
			source.Title = chunk.Web.Title
			source.URI = chunk.Web.URI
		}
		sources = append(sources, source)
	}
	return sources
}

func buildGeminiClientConfig(endpoint, apiKey string) (*genai.ClientConfig, error) {
	baseURL, apiVersion, err := parseGeminiBaseURLAndVersion(endpoint)
	if err != nil {
		return nil, err
	}
	return &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: apiVersion,
		},
	}, nil
}

// parseGeminiBaseURLAndVersion splits an endpoint such as
// https://host/prefix/v1beta into "https://host/prefix" and "v1beta".
func parseGeminiBaseURLAndVersion(endpoint string) (string, string, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		trimmed = defaultGeminiBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", "", NewError(ErrCodeInvalidInput, fmt.Sprintf("invalid gemini endpoint: %v", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", "", NewError(ErrCodeInvalidInput, "invalid gemini endpoint scheme: "+parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", "", NewError(ErrCodeInvalidInput, "invalid gemini endpoint host")
	}

	segments := []string{}
	if path := strings.Trim(parsed.Path, "/"); path != "" {
		segments = strings.Split(path, "/")
	}

	apiVersion := "v1beta"
	prefix := segments
	for idx, segment := range segments {
		if strings.HasPrefix(strings.ToLower(segment), "v1") {
			apiVersion = segment
			prefix = segments[:idx]
			break
		}
	}

	// genai joins BaseURL and the version with its own slash.
	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	if basePath := strings.Join(prefix, "/"); basePath != "" {
		baseURL += "/" + basePath
	}
	return baseURL, apiVersion, nil
}
