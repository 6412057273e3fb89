package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

const fullResponse = `[PART 1: REPORT]
## 市场概览
美国与德国的需求最高。

[PART 2: DATA]
` + "```json" + `
{
  "topCountries": [
    {"name": "United States", "value": 95},
    {"name": "Germany", "value": 80}
  ],
  "competitors": ["SunPower", "Jinko"],
  "suggestedAction": "优先布局美国市场"
}
` + "```" + `
`

func TestParseFullResponse(t *testing.T) {
	report, data := Parse(fullResponse)

	assert.Equal(t, "## 市场概览\n美国与德国的需求最高。", report)
	require.NotNil(t, data)
	assert.Equal(t, []model.ChartDataPoint{
		{Name: "United States", Value: 95},
		{Name: "Germany", Value: 80},
	}, data.TopCountries)
	assert.Equal(t, []string{"SunPower", "Jinko"}, data.Competitors)
	assert.Equal(t, "优先布局美国市场", data.SuggestedAction)
}

func TestParseWithoutData(t *testing.T) {
	report, data := Parse("  ## 仅有报告\n内容  ")
	assert.Equal(t, "## 仅有报告\n内容", report)
	assert.Nil(t, data)
}

func TestParseMalformedJSONIsRepaired(t *testing.T) {
	text := "报告\n[PART 2: DATA]\n```json\n{\"topCountries\": [{\"name\": \"Japan\", \"value\": 70},], \"competitors\": [\"Hario\",], \"suggestedAction\": \"x\",}\n```"

	report, data := Parse(text)
	assert.Equal(t, "报告", report)
	require.NotNil(t, data)
	assert.Equal(t, []model.ChartDataPoint{{Name: "Japan", Value: 70}}, data.TopCountries)
	assert.Equal(t, []string{"Hario"}, data.Competitors)
}

func TestParseQuotedNumbersKeepDataset(t *testing.T) {
	text := "报告\n[PART 2: DATA]\n```json\n{\"topCountries\":[{\"name\":\"Japan\",\"value\":\"70\"},{\"name\":\"Korea\",\"value\":55}],\"competitors\":[\"Hario\"],\"suggestedAction\":\"go\"}\n```"

	report, data := Parse(text)
	assert.Equal(t, "报告", report)
	require.NotNil(t, data)
	assert.Equal(t, []model.ChartDataPoint{{Name: "Japan", Value: 70}, {Name: "Korea", Value: 55}}, data.TopCountries)
	assert.Equal(t, []string{"Hario"}, data.Competitors)
	assert.Equal(t, "go", data.SuggestedAction)
}

func TestParseBadFieldKeepsOtherFields(t *testing.T) {
	text := "报告\n```json\n{\"topCountries\":[{\"name\":\"Japan\",\"value\":\"high\"}],\"competitors\":\"Hario\",\"suggestedAction\":\"go\"}\n```"

	_, data := Parse(text)
	require.NotNil(t, data)
	assert.Equal(t, []model.ChartDataPoint{{Name: "Japan", Value: 0}}, data.TopCountries)
	assert.Empty(t, data.Competitors)
	assert.Equal(t, "go", data.SuggestedAction)
}

func TestParseHopelessJSONYieldsNilData(t *testing.T) {
	text := "报告正文\n[PART 2: DATA]\n```json\n\n```"
	report, data := Parse(text)
	assert.Equal(t, "报告正文", report)
	assert.Nil(t, data)
}

func TestReportRemovesFenceWhenMarkerMissing(t *testing.T) {
	text := "## 报告\n正文\n```json\n{\"competitors\": [\"A\"]}\n```\n"
	report, data := Parse(text)
	assert.Equal(t, "## 报告\n正文", report)
	require.NotNil(t, data)
	assert.Equal(t, []string{"A"}, data.Competitors)
}

func TestParseUppercaseFence(t *testing.T) {
	_, data := Parse("x\n```JSON\n{\"suggestedAction\": \"go\"}\n```")
	require.NotNil(t, data)
	assert.Equal(t, "go", data.SuggestedAction)
}

func TestDecodeMarketDataEmpty(t *testing.T) {
	_, err := DecodeMarketData("   ")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	in := &model.MarketData{
		TopCountries: []model.ChartDataPoint{
			{Name: " A ", Value: 120},
			{Name: "", Value: 50},
			{Name: "B", Value: -3},
			{Name: "C", Value: 40},
			{Name: "D", Value: 30},
			{Name: "E", Value: 20},
			{Name: "F", Value: 10},
		},
		Competitors:     []string{"Acme", " acme ", "", "Beta"},
		SuggestedAction: "  do it ",
	}

	out := Normalize(in)
	assert.Equal(t, []model.ChartDataPoint{
		{Name: "A", Value: 100},
		{Name: "B", Value: 0},
		{Name: "C", Value: 40},
		{Name: "D", Value: 30},
		{Name: "E", Value: 20},
	}, out.TopCountries)
	assert.Equal(t, []string{"Acme", "Beta"}, out.Competitors)
	assert.Equal(t, "do it", out.SuggestedAction)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("\uFEFF```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences(`{"a":1}`))
}
