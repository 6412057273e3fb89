package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel Anthropic 默认模型
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicGenerator 直接调用 Anthropic Messages API，不具备原生搜索能力
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

var _ Generator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator 创建 Anthropic 生成器
func NewAnthropicGenerator(apiKey, modelName string, maxTokens int) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if modelName == "" {
		modelName = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	return &AnthropicGenerator{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     modelName,
		maxTokens: maxTokens,
	}, nil
}

func (a *AnthropicGenerator) Name() string { return "anthropic" }

func (a *AnthropicGenerator) Grounded() bool { return false }

func (a *AnthropicGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	modelName := pickModel(req.Model, a.model)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelName),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*req.Temperature))
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return &Response{Text: sb.String(), Model: modelName}, nil
}
