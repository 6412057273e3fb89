package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Keyword:        "Solar Panels",
		MarkdownReport: "## 市场概览\n\n详见 [报告](https://example.com/report)。\n\n<script>alert(1)</script>",
		StructuredData: &model.MarketData{
			TopCountries: []model.ChartDataPoint{{Name: "Germany", Value: 92}, {Name: "Spain", Value: 71}},
			Competitors:  []string{"SunPower", "Jinko"},
		},
		Sources: []model.GroundingSource{
			{Kind: model.SourceWeb, URI: "https://www.example.com/a", Title: "Example"},
			{Kind: model.SourceWeb, URI: ""},
		},
		CreatedAt: time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown("# Title\n\nSee [docs](https://example.com/docs).\n\n| a | b |\n|---|---|\n| 1 | 2 |"))

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `rel="noopener noreferrer"`)
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "<body>")
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	out := string(Markdown("hello <script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "www.example.com", Hostname("https://www.example.com/path?q=1"))
	assert.Equal(t, "vertexaisearch.cloud.google.com", Hostname("https://vertexaisearch.cloud.google.com/grounding-api-redirect/abc"))
	assert.Equal(t, "not a url", Hostname("not a url"))
}

func TestValidSources(t *testing.T) {
	sources := ValidSources([]model.GroundingSource{
		{Kind: model.SourceWeb, URI: "https://a.com/x", Title: "A"},
		{Kind: model.SourceMaps, URI: "https://maps.google.com/?cid=1"},
		{Kind: model.SourceWeb, URI: "  "},
		{Kind: model.SourceWeb, URI: "javascript:alert(document.cookie)", Title: "xss"},
		{Kind: model.SourceWeb, URI: "JavaScript://a.com/%0Aalert(1)"},
		{Kind: model.SourceWeb, URI: "data:text/html,<script>alert(1)</script>"},
		{Kind: model.SourceWeb, URI: "/relative/path"},
		{Kind: model.SourceWeb, URI: "https:///no-host"},
	})

	require.Len(t, sources, 2)
	assert.Equal(t, "A", sources[0].Title)
	assert.Equal(t, "a.com", sources[0].Host)
	assert.Equal(t, "Source", sources[1].Title)
	assert.Equal(t, model.SourceMaps, sources[1].Kind)
	assert.Equal(t, "maps.google.com", sources[1].Host)
}

func TestValidSourcesKeepsReviewSnippets(t *testing.T) {
	sources := ValidSources([]model.GroundingSource{{
		Kind:           model.SourceMaps,
		URI:            "https://maps.google.com/?cid=7",
		Title:          "Tokyo Pet Co.",
		ReviewSnippets: []string{"Fast delivery", "Good wholesale prices"},
	}})

	require.Len(t, sources, 1)
	assert.Equal(t, []string{"Fast delivery", "Good wholesale prices"}, sources[0].Reviews)
}

func TestSafeURL(t *testing.T) {
	u, ok := SafeURL(" HTTPS://Example.com/a ")
	require.True(t, ok)
	assert.Equal(t, "example.com", strings.ToLower(u.Hostname()))

	for _, raw := range []string{"", "javascript:alert(1)", "ftp://example.com/f", "mailto:a@b.com", "//example.com"} {
		_, ok := SafeURL(raw)
		assert.False(t, ok, raw)
	}
}

func TestChartBars(t *testing.T) {
	points := make([]model.ChartDataPoint, 0, 6)
	for i := 0; i < 6; i++ {
		points = append(points, model.ChartDataPoint{Name: "C", Value: float64(i * 30)})
	}

	bars := ChartBars(points)
	require.Len(t, bars, 6)
	assert.Equal(t, Palette[0], bars[0].Color)
	assert.Equal(t, Palette[0], bars[5].Color)
	assert.Equal(t, 100.0, bars[4].Percent)
	assert.Equal(t, 120.0, bars[4].Value)
	assert.Empty(t, ChartBars(nil))
}

func TestAction(t *testing.T) {
	assert.Equal(t, DefaultAction, Action(nil))
	assert.Equal(t, DefaultAction, Action(&model.MarketData{SuggestedAction: " "}))
	assert.Equal(t, "先做德国", Action(&model.MarketData{SuggestedAction: "先做德国"}))
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "全球市场深度分析报告: Solar Panels")
	assert.Contains(t, out, "2025-03-01 08:30")
	assert.Contains(t, out, "Germany")
	assert.Contains(t, out, "#0f766e")
	assert.Contains(t, out, DefaultAction)
	assert.Contains(t, out, "<span>Jinko</span>")
	assert.Contains(t, out, `href="https://www.example.com/a"`)
	assert.Contains(t, out, "www.example.com")
	assert.NotContains(t, out, "<script>alert")
	assert.Equal(t, 1, strings.Count(out, `class="source-title"`))
}

func TestReportWithoutData(t *testing.T) {
	r := sampleResult()
	r.StructuredData = nil
	r.Sources = nil

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, r))
	out := buf.String()

	assert.NotContains(t, out, "行动指南")
	assert.NotContains(t, out, "数据来源")
	assert.Contains(t, out, "市场概览")
}

func TestReportEmptyChart(t *testing.T) {
	r := sampleResult()
	r.StructuredData.TopCountries = nil

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, r))
	assert.Contains(t, buf.String(), EmptyChartText)
}

func TestTerminal(t *testing.T) {
	out, err := Terminal(sampleResult(), 80)
	require.NoError(t, err)

	assert.Contains(t, out, "Solar Panels")
	assert.Contains(t, out, "Germany")
	assert.Contains(t, out, "SunPower")
	assert.Contains(t, out, "Example")
}

func TestTerminalChartEmpty(t *testing.T) {
	assert.Contains(t, TerminalChart(nil), EmptyChartText)
}
