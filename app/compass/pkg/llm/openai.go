package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OpenAIGenerator 兼容 OpenAI 协议的模型 (DeepSeek、Qwen 等)，不具备原生搜索能力
type OpenAIGenerator struct {
	chatModel model.BaseChatModel
	model     string
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator 通过 eino 创建 OpenAI 兼容的生成器
func NewOpenAIGenerator(ctx context.Context, baseURL, apiKey, modelName string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return newOpenAIGenerator(chatModel, modelName), nil
}

func newOpenAIGenerator(cm model.BaseChatModel, modelName string) *OpenAIGenerator {
	return &OpenAIGenerator{chatModel: cm, model: modelName}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) Grounded() bool { return false }

// Generate 忽略 Grounding 参数，检索上下文由引擎拼接到提示词中
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	var messages []*schema.Message
	if req.System != "" {
		messages = append(messages, &schema.Message{Role: schema.System, Content: req.System})
	}
	messages = append(messages, &schema.Message{Role: schema.User, Content: req.Prompt})

	modelName := pickModel(req.Model, g.model)
	var opts []model.Option
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Temperature))
	}

	msg, err := g.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("openai generation failed: %w", err)
	}
	return &Response{Text: msg.Content, Model: modelName}, nil
}
