// Package ai produces tutor replies and example sentences, through OpenAI when
// a key is configured and through simple built-in rules otherwise.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// Tutor answers free text typed while the tutor slot is active
type Tutor interface {
	Reply(ctx context.Context, mode, text string) (string, error)
}

// Config configures the OpenAI client
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client is a thin wrapper over the OpenAI chat completions API
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewClient creates a new OpenAI client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &Client{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   200,
		temperature: 0.7,
	}, nil
}

const (
	chatSystemPrompt = "You are a friendly language tutor. Answer briefly in simple language, " +
		"keep the conversation going with a question, and point out at most one mistake."
	grammarSystemPrompt = "You are a grammar checker for language learners. Reply with the corrected " +
		"sentence on the first line, then up to three short tips. If the sentence is correct, say so."
	exampleSystemPrompt = "You write short, natural example sentences for vocabulary cards."
)

// Reply answers the learner in chat or grammar mode
func (c *Client) Reply(ctx context.Context, mode, text string) (string, error) {
	system := chatSystemPrompt
	temperature := c.temperature
	if mode == "grammar" {
		system = grammarSystemPrompt
		temperature = 0.2
	}
	return c.complete(ctx, system, text, c.maxTokens, temperature)
}

// GenerateExample writes one example sentence using term
func (c *Client) GenerateExample(ctx context.Context, term, meaning, language string) (string, error) {
	prompt := fmt.Sprintf(
		"Write one short, practical example sentence in %s that naturally uses the word %q (meaning: %s). Return only the sentence.",
		language, term, meaning,
	)
	return c.complete(ctx, exampleSystemPrompt, prompt, 100, c.temperature)
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxCompletionTokens: maxTokens,
		Temperature:         temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in OpenAI response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty OpenAI response")
	}
	return content, nil
}
