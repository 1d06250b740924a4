package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// BrandFeature is one of the three feature cards in a generated experience.
type BrandFeature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BrandContent is the structured result of one generation.
type BrandContent struct {
	Theme       string         `json:"theme"`
	Headline    string         `json:"headline"`
	Subheadline string         `json:"subheadline"`
	Features    []BrandFeature `json:"features"`
}

var validThemes = map[string]bool{
	"cyber":   true,
	"luxury":  true,
	"neural":  true,
	"default": true,
}

const systemPrompt = `You are the ImmersaAI core generation engine.
You design cinematic WebGL website experiences based on user prompts.
You MUST respond with a perfectly formatted JSON object.

The JSON schema must be exactly this:
{
  "theme": "string, MUST BE EXACTLY ONE OF: cyber, luxury, neural, or default",
  "headline": "string, a very catchy, short marketing headline (max 6 words)",
  "subheadline": "string, actionable secondary text explaining the value proposition",
  "features": [
    { "title": "string, feature name", "description": "string, short compelling description" },
    { "title": "string, feature name", "description": "string, short compelling description" },
    { "title": "string, feature name", "description": "string, short compelling description" }
  ]
}

Ensure exactly 3 features are provided. Optimize for dramatic, high-end startup copy.`

// Orchestrator calls the content provider and degrades to the local
// synthesizer on any failure. Generation never fails from the caller's
// point of view.
type Orchestrator struct {
	client  *openai.Client
	logger  *log.Logger
	timeout time.Duration
}

func NewOrchestrator(apiKey string, logger *log.Logger) *Orchestrator {
	o := &Orchestrator{
		logger:  logger,
		timeout: 30 * time.Second,
	}
	if apiKey != "" {
		o.client = openai.NewClient(apiKey)
	} else {
		logger.Println("No OPENAI_API_KEY configured, using local synthesizer only")
	}
	return o
}

// Generate produces brand content for the prompt. Provider failures and
// timeouts fall back to Synthesize and are logged, never surfaced.
func (o *Orchestrator) Generate(ctx context.Context, prompt string) BrandContent {
	if o.client == nil {
		return Synthesize(prompt)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Design a website experience for: " + prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		o.logger.Printf("Provider generation failed, falling back to synthesizer: %v", err)
		return Synthesize(prompt)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		o.logger.Println("Provider returned no content, falling back to synthesizer")
		return Synthesize(prompt)
	}

	var parsed BrandContent
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		o.logger.Printf("Provider returned malformed JSON, falling back to synthesizer: %v", err)
		return Synthesize(prompt)
	}

	return clamp(parsed, prompt)
}

// clamp forces the provider's output back onto the contract: known theme,
// non-empty copy, exactly 3 features.
func clamp(content BrandContent, prompt string) BrandContent {
	if !validThemes[content.Theme] {
		content.Theme = "default"
	}
	if content.Headline == "" {
		content.Headline = "Digital Experience"
	}
	if content.Subheadline == "" {
		content.Subheadline = "Welcome to the future."
	}
	if len(content.Features) != 3 {
		content.Features = Synthesize(prompt).Features
	}
	return content
}

// Synthesize builds deterministic brand content from keyword matching. It is
// the graceful-degradation path when the provider is unreachable, times out,
// or returns garbage.
func Synthesize(prompt string) BrandContent {
	p := strings.ToLower(prompt)

	if containsAny(p, "cyber", "security", "shield") {
		return BrandContent{
			Theme:       "cyber",
			Headline:    "Fortifying the Digital Frontier",
			Subheadline: "AI-powered zero-trust infrastructure for modern enterprises.",
			Features: []BrandFeature{
				{Title: "Quantum Encryption", Description: "Unhackable data pipelines secured by military-grade quantum protocols."},
				{Title: "Zero-Trust Architecture", Description: "Trust nothing. Verify everything. Our neural net monitors every micro-interaction."},
				{Title: "Automated Threat Response", Description: "Neutralize anomalies in milliseconds before they compromise your perimeter."},
			},
		}
	}

	if containsAny(p, "ai", "neural", "brain", "intelligence") {
		return BrandContent{
			Theme:       "neural",
			Headline:    "Intelligence, Evolved.",
			Subheadline: "Unleash super-intelligent agents to automate your entire cognitive workflow.",
			Features: []BrandFeature{
				{Title: "Cognitive Processing", Description: "Our proprietary neural core handles reasoning faster than human thought."},
				{Title: "Generative Workflows", Description: "From prompt to execution in under a second without human intervention."},
				{Title: "Continuous Learning", Description: "The system adapts and evolves from your data, getting smarter every day."},
			},
		}
	}

	if containsAny(p, "luxury", "premium", "agency") {
		return BrandContent{
			Theme:       "luxury",
			Headline:    "Elegance in Motion.",
			Subheadline: "Crafting bespoke digital experiences for the world's most exclusive brands.",
			Features: []BrandFeature{
				{Title: "Bespoke Design", Description: "Every pixel is carefully placed to evoke emotion and desire."},
				{Title: "Fluid Interaction", Description: "Silky smooth animations that make interacting a pure joy."},
				{Title: "Exclusive Aesthetics", Description: "A visual language that commands attention and premium value."},
			},
		}
	}

	return BrandContent{
		Theme:       "default",
		Headline:    "The Future of Digital Experience",
		Subheadline: fmt.Sprintf("Based on your idea: %q. A next-generation platform built for scale.", prompt),
		Features: []BrandFeature{
			{Title: "Dynamic Architecture", Description: "Built on serverless edge networks for infinite scalability and speed."},
			{Title: "Intelligent UX", Description: "Anticipating user needs with predictive design patterns."},
			{Title: "Lightning Fast", Description: "Optimized delivery ensuring sub-second load times globally."},
		},
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
