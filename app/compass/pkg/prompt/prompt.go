// Package prompt 构造发送给大模型的提示词。
package prompt

import (
	"fmt"
	"strings"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/search"
)

// 报告与数据段的分隔标记，解析器依赖这两个字符串
const (
	ReportMarker = "[PART 1: REPORT]"
	DataMarker   = "[PART 2: DATA]"
)

// SystemPrompt 报告生成的系统提示
const SystemPrompt = "你是一名资深的国际贸易与市场分析专家，服务对象是计划出海的中国外贸企业。"

const marketTpl = `
作为一名资深的国际贸易与市场分析专家，请利用 Google Search 对关键词 "%[1]s" 进行全球市场分析。

目标听众：打算将业务拓展到海外的中国外贸企业。

请执行以下操作：
1. 分析全球范围内对 "%[1]s" 搜索热度最高的 5 个国家/地区。
2. 分析当前的市场趋势、季节性变化以及潜在的消费者痛点。
3. 列出该产品在国际市场上的主要竞争对手或知名品牌（3-5个）。
4. 针对中国企业，给出具体的出海建议（如目标市场选择、营销策略等）。

请严格按照以下格式输出：

%[2]s
(这里请用 Markdown 格式撰写详细的分析报告，语言为中文。请包含小标题，条理清晰，重点突出。)

%[3]s
(请在报告结束后，提供一个 JSON 代码块，包含用于可视化的数据。
格式必须如下：
` + "```json" + `
{
  "topCountries": [
    {"name": "Country A", "value": 95},
    {"name": "Country B", "value": 80},
    ... (top 5 countries with relative interest score 0-100)
  ],
  "competitors": ["Brand A", "Brand B", "Brand C"],
  "suggestedAction": "简短的一句话核心建议"
}
` + "```" + `
)
`

// Market 构造市场分析提示词
func Market(keyword string) string {
	return fmt.Sprintf(marketTpl, strings.TrimSpace(keyword), ReportMarker, DataMarker)
}

// Buyers 构造地区买家检索提示词 (Maps grounding)
func Buyers(keyword, region string) string {
	return fmt.Sprintf(`Find top wholesale distributors or importers for "%s" in %s. List them with their details.`,
		strings.TrimSpace(keyword), strings.TrimSpace(region))
}

// WithSearchContext 为不具备原生搜索能力的模型附加搜索结果
func WithSearchContext(p string, results []search.Result) string {
	if len(results) == 0 {
		return p
	}

	var sb strings.Builder
	sb.WriteString("以下是最新的网络搜索结果，请以此作为分析依据（代替 Google Search）：\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "来源 %d:\n标题: %s\n链接: %s\n", i+1, r.Title, r.URL)
		if r.PublishedDate != "" {
			fmt.Fprintf(&sb, "发布时间: %s\n", r.PublishedDate)
		}
		fmt.Fprintf(&sb, "内容摘要: %s\n\n", r.Content)
	}
	sb.WriteString(p)
	return sb.String()
}
