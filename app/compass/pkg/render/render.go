// Package render 将分析结果渲染为 HTML 页面或终端文本。
package render

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

// 图表无数据时的提示
const EmptyChartText = "暂无图表数据"

// DefaultAction suggestedAction 为空时展示的建议
const DefaultAction = "根据数据，建议重点关注搜索量最高的市场，并针对当地文化优化产品描述。"

// Palette 柱状图配色，按序循环使用
var Palette = []string{"#0f766e", "#0d9488", "#14b8a6", "#2dd4bf", "#5eead4"}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Bar 一根横向柱
type Bar struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color"`
}

// Source 可展示的引用来源
type Source struct {
	Kind  model.SourceKind `json:"kind"`
	URI   string           `json:"uri"`
	Title string           `json:"title"`
	Host  string           `json:"host"`
	// Reviews 地图来源附带的用户评价摘录
	Reviews []string `json:"reviewSnippets,omitempty"`
}

// Markdown 将 Markdown 转为 HTML，所有链接在新标签页打开。原始 HTML 会被过滤
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return template.HTML(buf.String())
	}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		a.SetAttr("target", "_blank")
		a.SetAttr("rel", "noopener noreferrer")
	})
	out, err := doc.Find("body").Html()
	if err != nil {
		return ""
	}
	return template.HTML(strings.TrimSpace(out))
}

// Hostname 返回链接的主机名，无法解析时原样返回
func Hostname(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Hostname() == "" {
		return uri
	}
	return u.Hostname()
}

// SafeURL 只接受带主机名的 http/https 链接
func SafeURL(uri string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil || u.Hostname() == "" {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, true
	}
	return nil, false
}

// ValidSources 过滤掉没有可点击链接的来源，标题缺省为 "Source"
func ValidSources(sources []model.GroundingSource) []Source {
	var out []Source
	for _, s := range sources {
		u, ok := SafeURL(s.URI)
		if !ok {
			continue
		}
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = "Source"
		}
		out = append(out, Source{
			Kind:    s.Kind,
			URI:     u.String(),
			Title:   title,
			Host:    u.Hostname(),
			Reviews: s.ReviewSnippets,
		})
	}
	return out
}

// ChartBars 计算柱宽 (百分比) 与颜色
func ChartBars(points []model.ChartDataPoint) []Bar {
	bars := make([]Bar, 0, len(points))
	for i, p := range points {
		pct := p.Value
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		bars = append(bars, Bar{
			Name:    p.Name,
			Value:   p.Value,
			Percent: pct,
			Color:   Palette[i%len(Palette)],
		})
	}
	return bars
}

// Action 返回行动建议，为空时使用默认文案
func Action(data *model.MarketData) string {
	if data == nil || strings.TrimSpace(data.SuggestedAction) == "" {
		return DefaultAction
	}
	return data.SuggestedAction
}
