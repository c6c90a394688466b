package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/mosaic-lumen/threshold/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// verdictMaxTokens bounds the forced-choice classification reply.
const verdictMaxTokens = 4

// OpenAIClient implements Client against an OpenAI-compatible API.
type OpenAIClient struct {
	api             *openai.Client
	model           string
	classifierModel string
	mirrorModel     string
	maxTokens       int
	logger          *slog.Logger
}

// NewOpenAIClient creates a generation client from configuration.
func NewOpenAIClient(cfg config.GenerationConfig, logger *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generation API key is not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	mirrorModel := cfg.MirrorModel
	if mirrorModel == "" {
		mirrorModel = cfg.Model
	}

	return &OpenAIClient{
		api:             openai.NewClientWithConfig(clientCfg),
		model:           cfg.Model,
		classifierModel: cfg.ClassifierModel,
		mirrorModel:     mirrorModel,
		maxTokens:       cfg.MaxTokens,
		logger:          logger,
	}, nil
}

func buildMessages(persona string, history []Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: persona,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return msgs
}

// Stream implements Client.
func (c *OpenAIClient) Stream(ctx context.Context, persona string, history []Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			Messages:  buildMessages(persona, history),
			Stream:    true,
		})
		if err != nil {
			c.logger.Error("generation stream failed to open", "error", err)
			yield("", fmt.Errorf("open generation stream: %w", err))
			return
		}
		defer func() {
			if closeErr := stream.Close(); closeErr != nil {
				c.logger.Debug("failed to close generation stream", "error", closeErr)
			}
		}()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("receive generation fragment: %w", err))
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			fragment := resp.Choices[0].Delta.Content
			if fragment == "" {
				continue
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

// Complete implements Client. It serves the auxiliary one-shot path (puzzle
// paragraph generation) and so runs on the configured mirror model.
func (c *OpenAIClient) Complete(ctx context.Context, persona string, history []Message) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.mirrorModel,
		MaxTokens: c.maxTokens,
		Messages:  buildMessages(persona, history),
	})
	if err != nil {
		return "", fmt.Errorf("generation call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Verdict implements Client. The reply is trimmed but otherwise returned
// verbatim; interpreting it is the caller's problem.
func (c *OpenAIClient) Verdict(ctx context.Context, instruction, input string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.classifierModel,
		MaxTokens:   verdictMaxTokens,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	if err != nil {
		return "", fmt.Errorf("classification call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("classification returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
