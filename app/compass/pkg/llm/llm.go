// Package llm 封装各家大模型 SDK，对引擎暴露统一的 Generator 接口。
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

// ErrMissingAPIKey 未配置 API Key
var ErrMissingAPIKey = errors.New("API Key is missing")

// Grounding 请求的检索增强方式
type Grounding int

const (
	GroundingNone Grounding = iota
	GroundingSearch
	GroundingMaps
)

// Request 一次生成请求
type Request struct {
	Prompt      string
	System      string
	Model       string // 为空时使用生成器默认模型
	Temperature *float32
	Grounding   Grounding
}

// Response 生成结果
type Response struct {
	Text          string
	Sources       []model.GroundingSource
	SearchQueries []string
	Model         string
}

// Generator 大模型生成接口
type Generator interface {
	// Name 返回生成器标识，用于日志
	Name() string
	// Grounded 是否具备原生搜索 grounding 能力
	Grounded() bool
	// Generate 发送提示词并返回文本与引用来源
	Generate(ctx context.Context, req Request) (*Response, error)
}

// IsRateLimited 判断错误是否为限流 (429)
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit")
}

func pickModel(reqModel, defaultModel string) string {
	if reqModel != "" {
		return reqModel
	}
	return defaultModel
}
