package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Searcher 为不具备原生 grounding 的模型提供实时检索
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// 检索主题
const (
	TopicGeneral = "general"
	TopicNews    = "news"
)

// Request 检索请求
type Request struct {
	Query      string
	Topic      string
	MaxResults int
	// Country 目标市场，支持的服务商会据此调整结果排序
	Country string
}

// Response 检索响应
type Response struct {
	Results []Result
}

// Result 单条检索结果
type Result struct {
	Title         string
	URL           string
	Content       string
	Score         float64
	PublishedDate string
}

// MarketQuery 市场分析使用的检索语句
func MarketQuery(keyword string) string {
	return fmt.Sprintf("%s market demand import export", strings.TrimSpace(keyword))
}

// BuyerQuery 买家检索使用的检索语句
func BuyerQuery(keyword, region string) string {
	return fmt.Sprintf("%s wholesale distributors importers %s", strings.TrimSpace(keyword), strings.TrimSpace(region))
}

// Dedup 去掉空链接和重复链接，保留首次出现的结果
func Dedup(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	out := make([]Result, 0, len(results))
	for _, r := range results {
		key := normalizeURL(r.URL)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// normalizeURL 忽略协议、fragment 和末尾斜杠的差异
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.ToLower(u.Host) + strings.TrimSuffix(u.EscapedPath(), "/") + "?" + u.RawQuery
}
