package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/archivelab/scriptorium/pkg/corrector"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"
)

var _ corrector.Provider = (*Client)(nil)

type Client struct {
	*Config
	client openai.Client
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
		Config: cfg,
		client: openai.NewClient(cfg.Options()...),
	}, nil
}

// entitySchema shapes the extraction response. The decoder still
// accepts extra categories so nothing the model volunteers is dropped.
type entitySchema struct {
	People      []string `json:"People"`
	Productions []string `json:"Productions"`
	Companies   []string `json:"Companies"`
	Theaters    []string `json:"Theaters"`
	Dates       []string `json:"Dates"`
}

func (c *Client) Correct(ctx context.Context, text string) (*corrector.Result, error) {
	corrected, err := c.correct(ctx, text)

	if err != nil {
		return nil, err
	}

	entities, err := c.extract(ctx, corrected)

	if err != nil {
		return nil, err
	}

	return &corrector.Result{
		Text: corrected,

		Entities: entities,
	}, nil
}

func (c *Client) correct(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),

		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(corrector.CorrectionSystemPrompt),
			openai.UserMessage(text),
		},

		Temperature: openai.Float(0),
	})

	if err != nil {
		return "", fmt.Errorf("correction call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", corrector.ErrMalformed)
	}

	corrected := strings.TrimSpace(resp.Choices[0].Message.Content)

	if corrected == "" {
		return "", fmt.Errorf("%w: empty completion", corrector.ErrMalformed)
	}

	return corrected, nil
}

func (c *Client) extract(ctx context.Context, text string) (map[string][]string, error) {
	schema, err := jsonschema.For[entitySchema](nil)

	if err != nil {
		return nil, fmt.Errorf("entity schema: %w", err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),

		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(corrector.EntitySystemPrompt),
			openai.UserMessage(text),
		},

		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "letter_entities",
					Schema: schema,
				},
			},
		},

		Temperature: openai.Float(0.2),
	})

	if err != nil {
		return nil, fmt.Errorf("entity extraction call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", corrector.ErrMalformed)
	}

	return corrector.ParseEntities(resp.Choices[0].Message.Content)
}
