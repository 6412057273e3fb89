package llm

import (
	"context"
	"fmt"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/config"
)

// NewGenerator 根据 llm.provider 创建生成器，默认 gemini
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	var (
		g   Generator
		err error
	)
	switch cfg.Provider {
	case "", "gemini":
		var gg *GeminiGenerator
		if gg, err = NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model); err == nil {
			g = gg
		}
	case "openai":
		var og *OpenAIGenerator
		if og, err = NewOpenAIGenerator(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model); err == nil {
			g = og
		}
	case "anthropic":
		var ag *AnthropicGenerator
		if ag, err = NewAnthropicGenerator(cfg.APIKey, cfg.Model, cfg.MaxTokens); err == nil {
			g = ag
		}
	default:
		err = fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
