package knowledge

import (
	"context"
	"fmt"
	"strings"
)

type GeneratorOptions struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

func NewGenerator(ctx context.Context, opts GeneratorOptions) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		return NewGeminiGenerator(ctx, opts.APIKey, opts.Model)
	case "openai":
		return NewOpenAIGenerator(opts.APIKey, opts.Model, opts.BaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", opts.Provider)
	}
}
