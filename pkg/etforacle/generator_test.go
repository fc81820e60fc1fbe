package etforacle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input string
		want  Provider
	}{
		{"", ProviderGemini},
		{"Gemini", ProviderGemini},
		{" openai ", ProviderOpenAI},
		{"ANTHROPIC", ProviderAnthropic},
	}
	for _, tt := range tests {
		got, err := ParseProvider(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseProvider("mistral")
	assert.True(t, IsErrorCode(err, ErrCodeUnsupported))
}

func TestNewGeneratorSelectsBackendAndDefaultModel(t *testing.T) {
	gen, err := NewGenerator(GeneratorConfig{})
	require.NoError(t, err)
	gemini, ok := gen.(*geminiGenerator)
	require.True(t, ok)
	assert.Equal(t, "gemini-3-flash-preview", gemini.model)
	assert.Equal(t, "", gemini.apiKey)

	gen, err = NewGenerator(GeneratorConfig{Provider: ProviderOpenAI})
	require.NoError(t, err)
	openAI, ok := gen.(*openAIGenerator)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o-search-preview", openAI.model)

	gen, err = NewGenerator(GeneratorConfig{Provider: ProviderAnthropic, Model: " claude-custom "})
	require.NoError(t, err)
	anthropicGen, ok := gen.(*anthropicGenerator)
	require.True(t, ok)
	assert.Equal(t, "claude-custom", anthropicGen.model)

	_, err = NewGenerator(GeneratorConfig{Provider: "bogus"})
	assert.Error(t, err)
}
