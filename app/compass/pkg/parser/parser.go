// Package parser 将模型返回的 Markdown + JSON 混合文本拆分为报告正文与图表数据。
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/prompt"
)

// MaxCountries 图表最多展示的国家/地区数
const MaxCountries = 5

var (
	jsonFence  = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	dataMarker = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(prompt.DataMarker) + `.*$`)
	reportLine = regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(prompt.ReportMarker) + `[ \t]*\r?\n?`)
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// Parse 拆分模型输出。图表数据缺失或无法解析时返回 nil，不视为错误
func Parse(text string) (string, *model.MarketData) {
	var data *model.MarketData
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		if d, err := DecodeMarketData(m[1]); err == nil {
			data = d
		}
	}
	return Report(text), data
}

// Report 提取报告正文：去掉 [PART 2: DATA] 之后的全部内容，避免 JSON 重复展示
func Report(text string) string {
	report := text
	if dataMarker.MatchString(report) {
		report = dataMarker.ReplaceAllString(report, "")
	} else {
		report = jsonFence.ReplaceAllString(report, "")
	}
	report = reportLine.ReplaceAllString(report, "")
	return strings.TrimSpace(report)
}

// DecodeMarketData 依次尝试标准 JSON、json-repair 修复、Hjson 宽松解析
func DecodeMarketData(raw string) (*model.MarketData, error) {
	raw = StripFences(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty data block")
	}

	var data model.MarketData
	if err := unmarshal([]byte(raw), &data); err == nil {
		return Normalize(&data), nil
	}

	if repaired, err := jsonrepair.RepairJSON(raw); err == nil {
		data = model.MarketData{}
		if err := unmarshal([]byte(repaired), &data); err == nil && !isEmpty(&data) {
			return Normalize(&data), nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(raw), &loose); err != nil {
		return nil, fmt.Errorf("parse market data: %w", err)
	}
	b, err := json.Marshal(loose)
	if err != nil {
		return nil, fmt.Errorf("parse market data: %w", err)
	}
	data = model.MarketData{}
	if err := unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse market data: %w", err)
	}
	if isEmpty(&data) {
		return nil, fmt.Errorf("parse market data: no known fields")
	}
	return Normalize(&data), nil
}

// unmarshal 个别字段类型不符时保留其余已解析的字段
func unmarshal(b []byte, data *model.MarketData) error {
	err := json.Unmarshal(b, data)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}

// StripFences 去除 BOM 与外层 ```json 代码块标记
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStart.ReplaceAllString(s, "")
	s = fenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Normalize 截取前 5 个国家，热度限制在 [0,100]，竞争对手去重
func Normalize(d *model.MarketData) *model.MarketData {
	countries := make([]model.ChartDataPoint, 0, MaxCountries)
	for _, c := range d.TopCountries {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		v := c.Value
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		countries = append(countries, model.ChartDataPoint{Name: name, Value: v})
		if len(countries) == MaxCountries {
			break
		}
	}

	seen := make(map[string]struct{}, len(d.Competitors))
	competitors := make([]string, 0, len(d.Competitors))
	for _, c := range d.Competitors {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		competitors = append(competitors, c)
	}

	return &model.MarketData{
		TopCountries:    countries,
		Competitors:     competitors,
		SuggestedAction: strings.TrimSpace(d.SuggestedAction),
	}
}

func isEmpty(d *model.MarketData) bool {
	return len(d.TopCountries) == 0 && len(d.Competitors) == 0 && d.SuggestedAction == ""
}
