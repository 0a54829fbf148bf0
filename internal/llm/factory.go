// internal/llm/factory.go
package llm

import (
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"eam-assistant/internal/common/config"
	apperrors "eam-assistant/internal/common/errors"
	"eam-assistant/internal/common/logger"
)

type backend int

const (
	backendOllama backend = iota
	backendOpenAI
)

var backends = map[string]backend{
	"gemma":           backendOllama,
	"llama3":          backendOllama,
	"gpt-4o":          backendOpenAI,
	"gpt-4o-mini":     backendOpenAI,
	"deep-seek-cloud": backendOpenAI,
	"tgi":             backendOpenAI,
}

// ValidNames lists the supported model names.
var ValidNames = []string{"gemma", "llama3", "gpt-4o", "gpt-4o-mini", "deep-seek-cloud", "tgi"}

// Validate reports whether name is one of ValidNames.
func Validate(name string) error {
	if name == "" {
		return apperrors.NewConfigurationMissingError("LLM_NAME not found in environment variables.")
	}
	if _, ok := backends[name]; !ok {
		return apperrors.NewLLMInvalidModelError(name)
	}
	return nil
}

// New builds a Completer for the configured model.
func New(cfg config.LLMConfig, log logger.Logger) (*Client, error) {
	if err := Validate(cfg.Name); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.LLMTimeout()}

	var (
		model llms.Model
		err   error
	)
	switch backends[cfg.Name] {
	case backendOllama:
		opts := []ollama.Option{
			ollama.WithModel(cfg.Name),
			ollama.WithHTTPClient(httpClient),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
	case backendOpenAI:
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, apperrors.NewConfigurationMissingError("LLM_API_KEY not found in environment variables.")
		}
		token := cfg.APIKey
		if token == "" {
			// self-hosted OpenAI-compatible servers accept any token
			token = "none"
		}
		opts := []openai.Option{
			openai.WithModel(cfg.Name),
			openai.WithToken(token),
			openai.WithHTTPClient(httpClient),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
		}
		model, err = openai.New(opts...)
	}
	if err != nil {
		return nil, apperrors.NewLLMCallFailedError(err)
	}

	return NewClient(model, Options{
		Name:        cfg.Name,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		MaxRetries:  cfg.MaxRetries,
	}, log), nil
}
