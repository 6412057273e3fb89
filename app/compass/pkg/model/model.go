package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ChartDataPoint 图表数据点，Value 为 0-100 的相对搜索热度
type ChartDataPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// UnmarshalJSON value 兼容数字、数字字符串 ("70"、"70%") 和 null，其余取值按 0 处理
func (p *ChartDataPoint) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Name = raw.Name
	p.Value = 0

	v := bytes.TrimSpace(raw.Value)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(v, &p.Value); err == nil {
		return nil
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		p.Value = f
	}
	return nil
}

// MarketData 模型在 [PART 2: DATA] 中返回的结构化数据
type MarketData struct {
	TopCountries    []ChartDataPoint `json:"topCountries"`
	Competitors     []string         `json:"competitors"`
	SuggestedAction string           `json:"suggestedAction"`
}

// SourceKind 引用来源类型
type SourceKind string

const (
	SourceWeb  SourceKind = "web"
	SourceMaps SourceKind = "maps"
)

// GroundingSource 搜索/地图 grounding 的引用来源
type GroundingSource struct {
	Kind           SourceKind `json:"kind"`
	URI            string     `json:"uri"`
	Title          string     `json:"title"`
	ReviewSnippets []string   `json:"reviewSnippets,omitempty"` // 仅地图来源
}

// AnalysisResult 一次市场分析的完整结果
type AnalysisResult struct {
	ID             int               `json:"id,omitempty"`
	Keyword        string            `json:"keyword"`
	MarkdownReport string            `json:"markdownReport"`
	StructuredData *MarketData       `json:"structuredData"` // 缺失或无法解析时为 nil
	Sources        []GroundingSource `json:"groundingChunks"`
	SearchQueries  []string          `json:"searchQueries,omitempty"`
	Model          string            `json:"model"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// AnalysisStatus 分析任务状态
type AnalysisStatus string

const (
	StatusIdle    AnalysisStatus = "IDLE"
	StatusLoading AnalysisStatus = "LOADING"
	StatusSuccess AnalysisStatus = "SUCCESS"
	StatusError   AnalysisStatus = "ERROR"
)

// CanTransition 状态机只允许 IDLE -> LOADING -> SUCCESS|ERROR，任何状态都可以重置回 IDLE
func (s AnalysisStatus) CanTransition(to AnalysisStatus) bool {
	if to == StatusIdle {
		return true
	}
	switch s {
	case StatusIdle, StatusSuccess, StatusError:
		return to == StatusLoading
	case StatusLoading:
		return to == StatusSuccess || to == StatusError
	}
	return false
}

// BuyerLeads 指定地区的潜在买家 (批发商/进口商)
type BuyerLeads struct {
	Keyword string            `json:"keyword"`
	Region  string            `json:"region"`
	Text    string            `json:"text"`
	Sources []GroundingSource `json:"sources,omitempty"`
}

// AnalysisSummary 历史记录摘要
type AnalysisSummary struct {
	ID          int       `json:"id"`
	Keyword     string    `json:"keyword"`
	TopCountry  string    `json:"topCountry"`
	SourceCount int       `json:"sourceCount"`
	CreatedAt   time.Time `json:"createdAt"`
}
