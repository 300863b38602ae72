package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/archivelab/scriptorium/pkg/corrector"

	"github.com/anthropics/anthropic-sdk-go"
)

var _ corrector.Provider = (*Client)(nil)

type Client struct {
	*Config
	messages anthropic.MessageService
}

func New(url, model string, options ...Option) (*Client, error) {
	if model == "" {
		return nil, errors.New("model must not be empty")
	}

	cfg := &Config{
		url:   url,
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	return &Client{
		Config:   cfg,
		messages: anthropic.NewMessageService(cfg.Options()...),
	}, nil
}

func (c *Client) Correct(ctx context.Context, text string) (*corrector.Result, error) {
	corrected, err := c.complete(ctx, corrector.CorrectionSystemPrompt, text, 0)

	if err != nil {
		return nil, err
	}

	if corrected == "" {
		return nil, fmt.Errorf("%w: empty completion", corrector.ErrMalformed)
	}

	raw, err := c.complete(ctx, corrector.EntitySystemPrompt, corrected, 0.2)

	if err != nil {
		return nil, err
	}

	entities, err := corrector.ParseEntities(raw)

	if err != nil {
		return nil, err
	}

	return &corrector.Result{
		Text: corrected,

		Entities: entities,
	}, nil
}

func (c *Client) complete(ctx context.Context, system, text string, temperature float64) (string, error) {
	message, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model: anthropic.Model(c.model),

		MaxTokens: 8192,

		System: []anthropic.TextBlockParam{
			{Text: system},
		},

		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},

		Temperature: anthropic.Float(temperature),
	})

	if err != nil {
		return "", fmt.Errorf("correction call: %w", err)
	}

	var content strings.Builder

	for _, block := range message.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			content.WriteString(block.Text)
		}
	}

	return strings.TrimSpace(content.String()), nil
}
