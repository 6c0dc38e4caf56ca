package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/mkravets/erudite/internal/model"
)

// OpenAIProvider implements Provider on the OpenAI Chat Completions API.
type OpenAIProvider struct {
	client *openai.Client
	config model.AnalyzerConfig
}

// NewOpenAIProvider creates the OpenAI analyzer.
func NewOpenAIProvider(config model.AnalyzerConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Analyze asks the model for a strict-JSON cultural analysis of the text.
func (p *OpenAIProvider) Analyze(ctx context.Context, text, language string) (*model.CulturalAnalysis, error) {
	analyzerModel := p.config.Model
	if analyzerModel == "" {
		analyzerModel = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: analyzerModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a cultural historian who explains the cultural context of text passages accurately and sensitively. You respond with valid JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text, language),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty response")
	}

	return parseAnalysis(resp.Choices[0].Message.Content)
}

// buildPrompt constructs the analysis prompt. Every text field in the
// response must be written in the requested language.
func buildPrompt(text, language string) string {
	return fmt.Sprintf(`Analyze the cultural and historical context of the following passage.
Write ALL text fields of your response in the language with code %q.

Passage:
%s

Return ONLY a valid JSON object with this structure:
{
  "cultural_origin": "brief origin and significance",
  "cross_cultural_connections": "key influences and relationships",
  "modern_analogy": "a comparison relevant to a present-day audience",
  "timeline_events": [{"year": "YYYY", "title": "", "description": "", "significance": ""}],
  "geographic_locations": [{"name": "", "coordinates": {"lat": 0.0, "lng": 0.0}, "significance": "", "modern_name": ""}],
  "key_concepts": [{"term": "", "definition": "", "context": "", "modern_parallel": ""}],
  "external_resources": {"timeline_links": [], "map_links": [], "further_reading": []}
}

Rules:
- Include timeline_events only for historical content (3-5 events).
- Include geographic_locations only for place-specific content (2-4 locations).
- Include key_concepts only for complex terms (3-5 terms).
- Use only verified URLs in external_resources.
- Do not include any text before or after the JSON object.`, language, text)
}

// parseAnalysis decodes the model output, tolerating markdown code fences
// around the JSON object.
func parseAnalysis(content string) (*model.CulturalAnalysis, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var analysis model.CulturalAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	if analysis.CulturalOrigin == "" || analysis.CrossCulturalConnections == "" || analysis.ModernAnalogy == "" {
		return nil, fmt.Errorf("decode analysis: missing required fields")
	}

	analysis.Normalize()
	return &analysis, nil
}
