package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sashabaranov/go-openai"
	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/core"
)

// Provider is a text-generation backend.
//
//go:generate mockgen -destination=../../mocks/mock_provider.go -package=mocks . Provider
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CredentialChecker is implemented by providers that need a secret. The check
// runs before any cache lookup or network call.
type CredentialChecker interface {
	CheckCredentials() error
}

// ProviderOptions carries the per-run generation settings.
type ProviderOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// NewProvider builds the backend named by cfg.Provider. SDK clients are created
// lazily, so a missing credential surfaces from CheckCredentials rather than here.
func NewProvider(ctx context.Context, cfg config.AIConfig, opts ProviderOptions, logger *slog.Logger) (Provider, error) {
	if opts.Model == "" {
		opts.Model = cfg.Model
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = cfg.MaxTokens
	}
	creds := credentials{key: cfg.APIKey(), env: cfg.APIKeyEnv(), provider: cfg.Provider}

	switch cfg.Provider {
	case "gemini":
		return &geminiProvider{credentials: creds, ctx: ctx, opts: opts}, nil
	case "ollama":
		model, err := ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithModel(opts.Model),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return &goframeProvider{model: model}, nil
	case "openai":
		return &openAIProvider{credentials: creds, opts: opts}, nil
	case "anthropic":
		return &anthropicProvider{credentials: creds, opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

type credentials struct {
	key      string
	env      string
	provider string
}

func (c credentials) CheckCredentials() error {
	if c.key == "" {
		return fmt.Errorf("%w: %s is not set in environment for %s provider", core.ErrPreconditionFailed, c.env, c.provider)
	}
	return nil
}

// goframeProvider adapts an llms.Model.
type goframeProvider struct {
	model llms.Model
}

func (p *goframeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.model.Call(ctx, prompt)
}

type geminiProvider struct {
	credentials
	ctx  context.Context
	opts ProviderOptions

	once  sync.Once
	model llms.Model
	err   error
}

func (p *geminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.CheckCredentials(); err != nil {
		return "", err
	}
	p.once.Do(func() {
		p.model, p.err = gemini.New(p.ctx, gemini.WithModel(p.opts.Model), gemini.WithAPIKey(p.key))
	})
	if p.err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", p.err)
	}
	return p.model.Call(ctx, prompt)
}

type openAIProvider struct {
	credentials
	opts ProviderOptions

	once   sync.Once
	client *openai.Client
}

func (p *openAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.CheckCredentials(); err != nil {
		return "", err
	}
	p.once.Do(func() { p.client = openai.NewClient(p.key) })

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(p.opts.Temperature),
		MaxTokens:   p.opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type anthropicProvider struct {
	credentials
	opts ProviderOptions

	once   sync.Once
	client anthropic.Client
}

func (p *anthropicProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := p.CheckCredentials(); err != nil {
		return "", err
	}
	p.once.Do(func() { p.client = anthropic.NewClient(option.WithAPIKey(p.key)) })

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.opts.Model),
		MaxTokens:   int64(p.opts.MaxTokens),
		Temperature: anthropic.Float(p.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var content string
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += b.Text
		}
	}
	return content, nil
}

// newOllamaHTTPClient creates an HTTP client with longer timeouts for Ollama requests.
func newOllamaHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}
