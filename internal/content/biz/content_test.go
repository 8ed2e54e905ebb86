package biz

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/yt-content-manager/internal/conf"
	"github.com/lk2023060901/yt-content-manager/internal/content/types"
	apperrors "github.com/lk2023060901/yt-content-manager/internal/pkg/errors"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/logger"
	"github.com/lk2023060901/yt-content-manager/internal/pkg/tokenizer"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	mu   sync.Mutex
	reqs []openai.ChatCompletionRequest

	resp  openai.ChatCompletionResponse
	err   error
	block bool
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return openai.ChatCompletionResponse{}, ctx.Err()
	}
	return f.resp, f.err
}

func (f *fakeChat) last() openai.ChatCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

type fakeCounter struct {
	got []string
	err error
}

func (f *fakeCounter) CountMessages(contents ...string) (int, error) {
	f.got = contents
	if f.err != nil {
		return 0, f.err
	}
	return 42, nil
}

func testConfig() conf.GenerationConfig {
	return conf.GenerationConfig{
		APIToken:    "token",
		APIEndpoint: "https://models.example.com",
		Model:       "gpt-4o-mini",
		Timeout:     time.Second,
	}
}

func reply(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text}},
		},
		Usage: openai.Usage{PromptTokens: 120, CompletionTokens: 8, TotalTokens: 128},
	}
}

func newUseCase(t *testing.T, cfg conf.GenerationConfig, chat ChatCompleter, tokens TokenCounter) *ContentUseCase {
	t.Helper()
	uc, err := NewContentUseCase(cfg, chat, tokens, logger.NewNop())
	require.NoError(t, err)
	return uc
}

func TestNewContentUseCase_MissingConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*conf.GenerationConfig)
		wantErr error
	}{
		{"missing token", func(c *conf.GenerationConfig) { c.APIToken = "" }, conf.ErrMissingAPIToken},
		{"missing endpoint", func(c *conf.GenerationConfig) { c.APIEndpoint = "" }, conf.ErrMissingAPIEndpoint},
		{"missing model", func(c *conf.GenerationConfig) { c.Model = "" }, conf.ErrMissingModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			uc, err := NewContentUseCase(cfg, &fakeChat{}, nil, logger.NewNop())
			assert.Nil(t, uc)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, apperrors.Is(err, apperrors.ErrConfigInvalid))
		})
	}
}

func TestNewContentUseCase_RequiresClient(t *testing.T) {
	_, err := NewContentUseCase(testConfig(), nil, nil, logger.NewNop())
	assert.Error(t, err)
}

func TestGenerate_RequestShape(t *testing.T) {
	chat := &fakeChat{resp: reply("10 Quick Dinner Ideas")}
	uc := newUseCase(t, testConfig(), chat, nil)

	input := "Write a title for a cooking video"
	got, err := uc.Generate(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, got.OK())
	assert.Equal(t, "10 Quick Dinner Ideas", got.String())

	req := chat.last()
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, SystemPrompt, req.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	assert.Equal(t, input, req.Messages[1].Content)
	assert.InDelta(t, 0, req.Temperature, 1e-9)
	assert.Equal(t, float32(1.0), req.TopP)
	assert.False(t, req.Stream)
}

func TestGenerate_InputIsVerbatim(t *testing.T) {
	chat := &fakeChat{resp: reply("ok")}
	uc := newUseCase(t, testConfig(), chat, nil)

	inputs := []string{"", "  padded  ", "multi\nline <b>html</b> & \"quotes\"", "日本語のタイトル"}
	for _, in := range inputs {
		_, err := uc.Generate(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, in, chat.last().Messages[1].Content)
	}
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	chat := &fakeChat{err: types.NewProviderError("openai", "request failed", errors.New("connection refused"))}
	uc := newUseCase(t, testConfig(), chat, nil)

	got, err := uc.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, got.OK())
	assert.True(t, strings.HasPrefix(got.String(), types.ErrorPrefix))
	assert.Contains(t, got.String(), "connection refused")
}

func TestGenerate_NoChoices(t *testing.T) {
	uc := newUseCase(t, testConfig(), &fakeChat{resp: openai.ChatCompletionResponse{}}, nil)

	got, err := uc.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.ErrorIs(t, got.Err, types.ErrNoChoices)
}

func TestGenerate_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	uc := newUseCase(t, cfg, &fakeChat{block: true}, nil)

	start := time.Now()
	got, err := uc.Generate(context.Background(), "slow")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.ErrorIs(t, got.Err, context.DeadlineExceeded)
	assert.True(t, strings.HasPrefix(got.String(), types.ErrorPrefix))
}

func TestGenerate_CallerCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 0
	uc := newUseCase(t, cfg, &fakeChat{block: true}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	got, err := uc.Generate(ctx, "abandoned")
	require.NoError(t, err)
	assert.ErrorIs(t, got.Err, context.Canceled)
}

func TestGenerate_InvalidConfigAtCallTime(t *testing.T) {
	uc := &ContentUseCase{client: &fakeChat{}, logger: logger.NewNop()}

	_, err := uc.Generate(context.Background(), "anything")
	assert.ErrorIs(t, err, conf.ErrMissingAPIToken)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfigInvalid))
}

func TestGenerate_TokenEstimate(t *testing.T) {
	counter := &fakeCounter{}
	uc := newUseCase(t, testConfig(), &fakeChat{resp: reply("ok")}, counter)

	got, err := uc.Generate(context.Background(), "brief")
	require.NoError(t, err)
	assert.Equal(t, 42, got.Usage.PromptEstimate)
	assert.Equal(t, 120, got.Usage.PromptTokens)
	assert.Equal(t, []string{SystemPrompt, "brief"}, counter.got)
}

func TestGenerate_TokenEstimateFailureIsIgnored(t *testing.T) {
	counter := &fakeCounter{err: errors.New("encoding unavailable")}
	uc := newUseCase(t, testConfig(), &fakeChat{resp: reply("ok")}, counter)

	got, err := uc.Generate(context.Background(), "brief")
	require.NoError(t, err)
	assert.True(t, got.OK())
	assert.Zero(t, got.Usage.PromptEstimate)
}

// stalledProxy accepts connections and never answers.
func stalledProxy(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				_ = c.Close()
			}
		}()
		for {
			c, err := lis.Accept()
			if err != nil {
				return
			}
			conns = append(conns, c)
		}
	}()
	t.Cleanup(func() { _ = lis.Close() })

	return "http://" + lis.Addr().String()
}

func TestGenerate_RealTokenizerStaysOffNetwork(t *testing.T) {
	proxy := stalledProxy(t)
	t.Setenv("HTTPS_PROXY", proxy)
	t.Setenv("HTTP_PROXY", proxy)
	t.Setenv("TIKTOKEN_CACHE_DIR", t.TempDir())

	type built struct {
		counter *tokenizer.Counter
		err     error
	}
	ch := make(chan built, 1)
	go func() {
		c, err := tokenizer.New("gpt-4o-mini")
		ch <- built{c, err}
	}()

	var counter *tokenizer.Counter
	select {
	case b := <-ch:
		require.NoError(t, b.err)
		counter = b.counter
	case <-time.After(10 * time.Second):
		t.Fatal("tokenizer construction blocked")
	}

	cfg := testConfig()
	cfg.Timeout = 200 * time.Millisecond
	uc := newUseCase(t, cfg, &fakeChat{resp: reply("ok")}, counter)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	got, err := uc.Generate(ctx, "Write a title for a cooking video")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, got.OK())
	assert.Positive(t, got.Usage.PromptEstimate)
}
