package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to AnalysisStatus
		want     bool
	}{
		{StatusIdle, StatusLoading, true},
		{StatusIdle, StatusSuccess, false},
		{StatusIdle, StatusError, false},
		{StatusLoading, StatusSuccess, true},
		{StatusLoading, StatusError, true},
		{StatusLoading, StatusLoading, false},
		{StatusSuccess, StatusLoading, true},
		{StatusSuccess, StatusError, false},
		{StatusError, StatusLoading, true},
		{StatusError, StatusSuccess, false},
		{StatusLoading, StatusIdle, true},
		{StatusSuccess, StatusIdle, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestAnalysisResultJSONFields(t *testing.T) {
	b, err := json.Marshal(AnalysisResult{Keyword: "Pet Toys"})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Contains(t, fields, "markdownReport")
	assert.Contains(t, fields, "structuredData")
	assert.Contains(t, fields, "groundingChunks")
	assert.NotContains(t, fields, "id")
	assert.Nil(t, fields["structuredData"])
}

func TestChartDataPointUnmarshalValue(t *testing.T) {
	tests := []struct {
		in   string
		want ChartDataPoint
	}{
		{in: `{"name":"Japan","value":70}`, want: ChartDataPoint{Name: "Japan", Value: 70}},
		{in: `{"name":"Japan","value":"70"}`, want: ChartDataPoint{Name: "Japan", Value: 70}},
		{in: `{"name":"Japan","value":" 65.5% "}`, want: ChartDataPoint{Name: "Japan", Value: 65.5}},
		{in: `{"name":"Japan","value":null}`, want: ChartDataPoint{Name: "Japan"}},
		{in: `{"name":"Japan"}`, want: ChartDataPoint{Name: "Japan"}},
		{in: `{"name":"Japan","value":"high"}`, want: ChartDataPoint{Name: "Japan"}},
		{in: `{"name":"Japan","value":{"v":1}}`, want: ChartDataPoint{Name: "Japan"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var p ChartDataPoint
			require.NoError(t, json.Unmarshal([]byte(tt.in), &p))
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestGroundingSourceReviewSnippetsOmitted(t *testing.T) {
	b, err := json.Marshal(GroundingSource{Kind: SourceWeb, URI: "https://a.com"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "reviewSnippets")

	b, err = json.Marshal(GroundingSource{Kind: SourceMaps, URI: "https://maps.google.com/?cid=1", ReviewSnippets: []string{"great"}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"reviewSnippets":["great"]`)
}
