package data

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lk2023060901/yt-content-manager/internal/conf"
	"github.com/lk2023060901/yt-content-manager/internal/content/types"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const providerName = "openai"

// ChatClient talks to an OpenAI-compatible chat-completion endpoint.
type ChatClient struct {
	client    *openai.Client
	transport *http.Transport
	endpoint  string
	logger    *logger.Logger
}

// NewChatClient builds a client for cfg.APIEndpoint. The cleanup func releases
// idle upstream connections.
func NewChatClient(cfg conf.GenerationConfig, log *logger.Logger) (*ChatClient, func(), error) {
	if cfg.APIToken == "" {
		return nil, nil, conf.ErrMissingAPIToken
	}
	if cfg.APIEndpoint == "" {
		return nil, nil, conf.ErrMissingAPIEndpoint
	}

	u, err := url.Parse(cfg.APIEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, nil, fmt.Errorf("invalid %s %q", conf.EnvAPIEndpoint, cfg.APIEndpoint)
	}

	if log == nil {
		log = logger.L()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	clientCfg := openai.DefaultConfig(cfg.APIToken)
	clientCfg.BaseURL = strings.TrimRight(cfg.APIEndpoint, "/")
	clientCfg.HTTPClient = &http.Client{Transport: transport}

	c := &ChatClient{
		client:    openai.NewClientWithConfig(clientCfg),
		transport: transport,
		endpoint:  clientCfg.BaseURL,
		logger:    log.Named("openai"),
	}

	c.logger.Info("chat client created",
		zap.String("endpoint", c.endpoint),
		zap.String("model", cfg.Model))

	cleanup := func() {
		transport.CloseIdleConnections()
	}
	return c, cleanup, nil
}

// CreateChatCompletion sends req and classifies failures as *types.ProviderError.
func (c *ChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	req.Stream = false

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return openai.ChatCompletionResponse{}, c.classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionResponse{}, &types.ProviderError{
			Type:     types.ErrorTypeEmptyResponse,
			Provider: providerName,
			Message:  "empty response",
			Err:      types.ErrNoChoices,
		}
	}
	return resp, nil
}

func (c *ChatClient) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return types.NewTimeoutError(providerName, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &types.ProviderError{
			Type:       types.ErrorTypeForStatus(apiErr.HTTPStatusCode),
			Provider:   providerName,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    "API error",
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &types.ProviderError{
			Type:       types.ErrorTypeForStatus(reqErr.HTTPStatusCode),
			Provider:   providerName,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    "request failed",
			Err:        err,
		}
	}

	return types.NewProviderError(providerName, "request failed", err)
}
