package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/config"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/searxng"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/tavily"
)

func TestNewSearcher(t *testing.T) {
	tests := []struct {
		name    string
		search  config.SearchConfig
		want    interface{}
		wantErr bool
	}{
		{name: "nothing configured", search: config.SearchConfig{}},
		{name: "explicit none", search: config.SearchConfig{Provider: "none", Tavily: config.TavilyConfig{APIKey: "k"}}},
		{name: "tavily inferred", search: config.SearchConfig{Tavily: config.TavilyConfig{APIKey: "k"}}, want: &tavily.Client{}},
		{name: "tavily advanced", search: config.SearchConfig{Provider: "tavily", Tavily: config.TavilyConfig{APIKey: "k", Depth: "advanced"}}, want: &tavily.Client{}},
		{name: "searxng inferred", search: config.SearchConfig{SearXNG: config.SearXNGConfig{BaseURL: "http://localhost:8888"}}, want: &searxng.Client{}},
		{name: "tavily without key", search: config.SearchConfig{Provider: "tavily"}, wantErr: true},
		{name: "searxng without url", search: config.SearchConfig{Provider: "searxng"}, wantErr: true},
		{name: "unknown", search: config.SearchConfig{Provider: "bing"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSearcher(&config.Config{Search: tt.search})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, s)
				return
			}
			assert.IsType(t, tt.want, s)
		})
	}
}
