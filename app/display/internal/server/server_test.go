package server

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trade_compass/app/display/internal/conf"
	"github.com/iWorld-y/trade_compass/app/display/internal/data"
	"github.com/iWorld-y/trade_compass/app/display/internal/service"
	"github.com/iWorld-y/trade_compass/app/display/internal/usecase"
)

func TestToEngineConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg := ToEngineConfig(&conf.Compass{
		Llm:         &conf.LLM{Model: "gemini-3-flash-preview", Temperature: 0.3},
		Search:      &conf.Search{Searxng: &conf.SearXNG{BaseUrl: "http://searx", Timeout: 5}},
		Concurrency: &conf.Concurrency{Qps: 2, Rpm: 30},
		Retry:       &conf.Retry{Max: 4, BaseDelay: "500ms"},
		Cache:       &conf.Cache{TTL: "12h"},
	})

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, "http://searx", cfg.Search.SearXNG.BaseURL)
	assert.Equal(t, 2, cfg.Concurrency.QPS)
	assert.Equal(t, 4, cfg.Retry.Max)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestToEngineConfigNil(t *testing.T) {
	cfg := ToEngineConfig(nil)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 60, cfg.Concurrency.RPM)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseDelay)
}

func TestIndexPage(t *testing.T) {
	d, cleanupData, err := data.NewData(nil, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanupData()

	uc, cleanup, err := usecase.NewAnalysisUseCase(nil, data.NewAnalysisRepo(d, log.DefaultLogger), nil, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()

	srv := NewHTTPServer(&conf.Server{Http: &conf.HTTP{Timeout: "1s"}}, service.NewCompassService(uc, log.DefaultLogger), log.DefaultLogger)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/", nil))
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "出海")
	assert.Contains(t, body, "Solar Panels")
	assert.Contains(t, body, "分析失败，请检查网络或稍后重试。")
	assert.Contains(t, body, "新搜索")

	// 未配置数据库时历史记录为空列表
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/api/history", nil))
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
}
