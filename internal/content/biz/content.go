package biz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lk2023060901/yt-content-manager/internal/conf"
	"github.com/lk2023060901/yt-content-manager/internal/content/types"
	apperrors "github.com/lk2023060901/yt-content-manager/internal/pkg/errors"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatCompleter sends one chat-completion request upstream.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// TokenCounter estimates the size of a prompt. Optional.
type TokenCounter interface {
	CountMessages(contents ...string) (int, error)
}

// ContentUseCase turns a free-text brief into generated video content.
type ContentUseCase struct {
	cfg    conf.GenerationConfig
	client ChatCompleter
	tokens TokenCounter
	logger *logger.Logger
}

// NewContentUseCase validates cfg up front so that a misconfigured
// process fails before serving traffic. tokens may be nil.
func NewContentUseCase(cfg conf.GenerationConfig, client ChatCompleter, tokens TokenCounter, log *logger.Logger) (*ContentUseCase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError(err)
	}
	if client == nil {
		return nil, errors.New("chat client is required")
	}
	if log == nil {
		log = logger.L()
	}

	return &ContentUseCase{
		cfg:    cfg,
		client: client,
		tokens: tokens,
		logger: log.Named("content"),
	}, nil
}

// BuildRequest assembles the two-message chat request for input.
func BuildRequest(model, input string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		// go-openai drops a zero temperature (omitempty); this is 0 on the wire.
		Temperature: math.SmallestNonzeroFloat32,
		TopP:        TopP,
	}
}

// Generate runs one completion for input.
//
// A configuration problem is returned as an error. Everything that goes
// wrong talking to the upstream service is reported through the returned
// Completion instead, so the caller decides how to present it.
func (uc *ContentUseCase) Generate(ctx context.Context, input string) (types.Completion, error) {
	if err := uc.cfg.Validate(); err != nil {
		return types.Completion{}, apperrors.NewConfigError(err)
	}

	log := uc.logger.WithContext(ctx)

	if uc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()
	}

	req := BuildRequest(uc.cfg.Model, input)
	estimate := uc.estimatePrompt(log, req)

	start := time.Now()
	resp, err := uc.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		log.Error("error calling LLM",
			zap.String("model", uc.cfg.Model),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return types.Failed(err), nil
	}

	if len(resp.Choices) == 0 {
		log.Error("error calling LLM",
			zap.String("model", uc.cfg.Model),
			zap.Error(types.ErrNoChoices),
		)
		return types.Failed(types.ErrNoChoices), nil
	}

	usage := types.Usage{
		PromptEstimate:   estimate,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}

	log.Info("content generated",
		zap.String("model", uc.cfg.Model),
		zap.Duration("latency", latency),
		zap.Int("prompt_estimate", usage.PromptEstimate),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)

	return types.Succeeded(resp.Choices[0].Message.Content, usage), nil
}

func (uc *ContentUseCase) estimatePrompt(log *logger.Logger, req openai.ChatCompletionRequest) int {
	if uc.tokens == nil {
		return 0
	}

	contents := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		contents = append(contents, m.Content)
	}

	n, err := uc.tokens.CountMessages(contents...)
	if err != nil {
		log.Debug("prompt token estimate unavailable", zap.Error(err))
		return 0
	}
	return n
}
