package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

// DefaultGeminiModel 报告生成默认模型
const DefaultGeminiModel = "gemini-3-flash-preview"

// GeminiGenerator 基于官方 GenAI SDK，支持 Google Search / Google Maps grounding
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator 创建 Gemini 生成器
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{client: client, model: modelName}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Grounded() bool { return true }

// Generate 调用 generateContent，并提取首个候选的 grounding 元数据
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	modelName := pickModel(req.Model, g.model)

	config := &genai.GenerateContentConfig{
		Temperature: req.Temperature,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	switch req.Grounding {
	case GroundingSearch:
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	case GroundingMaps:
		config.Tools = []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}}
	}

	result, err := g.client.Models.GenerateContent(ctx, modelName, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	resp := &Response{
		Text:  result.Text(),
		Model: modelName,
	}
	if len(result.Candidates) > 0 && result.Candidates[0].GroundingMetadata != nil {
		gm := result.Candidates[0].GroundingMetadata
		resp.Sources = convertChunks(gm.GroundingChunks)
		resp.SearchQueries = gm.WebSearchQueries
	}
	return resp, nil
}

func convertChunks(chunks []*genai.GroundingChunk) []model.GroundingSource {
	var sources []model.GroundingSource
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		switch {
		case chunk.Web != nil:
			sources = append(sources, model.GroundingSource{
				Kind:  model.SourceWeb,
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		case chunk.Maps != nil:
			sources = append(sources, model.GroundingSource{
				Kind:           model.SourceMaps,
				URI:            chunk.Maps.URI,
				Title:          chunk.Maps.Title,
				ReviewSnippets: reviewSnippets(chunk.Maps.PlaceAnswerSources),
			})
		}
	}
	return sources
}

func reviewSnippets(pas *genai.GroundingChunkMapsPlaceAnswerSources) []string {
	if pas == nil {
		return nil
	}
	var out []string
	for _, s := range pas.ReviewSnippets {
		if s == nil || strings.TrimSpace(s.Review) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(s.Review))
	}
	return out
}
