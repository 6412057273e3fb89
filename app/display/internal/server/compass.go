package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/config"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/engine"
	cLogger "github.com/iWorld-y/trade_compass/app/compass/pkg/logger"
	"github.com/iWorld-y/trade_compass/app/display/internal/conf"
	"github.com/iWorld-y/trade_compass/app/display/internal/data"
)

// NewCompassEngine 初始化 compass 引擎，分析结果写入展示服务的数据库
func NewCompassEngine(c *conf.Compass, d *data.Data, logger log.Logger) (*engine.Engine, func(), error) {
	cfg := ToEngineConfig(c)

	// 初始化日志
	if err := cLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init compass logger: %v", err)
		_ = cLogger.InitLogger("info", "") // 降级处理
	}

	var store engine.Store
	if s := d.Store(); s != nil {
		store = s
	}

	eng, err := engine.NewEngine(cfg, store)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init engine: %v", err)
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("Cleaning up compass engine")
	}
	return eng, cleanup, nil
}

// ToEngineConfig 将 internal/conf.Compass 转换为 pkg/config.Config，并补齐环境变量与默认值
func ToEngineConfig(c *conf.Compass) *config.Config {
	cfg := &config.Config{}
	if c == nil {
		c = &conf.Compass{}
	}
	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			Provider:    c.Llm.Provider,
			BaseURL:     c.Llm.BaseUrl,
			APIKey:      c.Llm.ApiKey,
			Model:       c.Llm.Model,
			BuyersModel: c.Llm.BuyersModel,
			Temperature: c.Llm.Temperature,
			MaxTokens:   int(c.Llm.MaxTokens),
		}
	}
	if c.Search != nil {
		cfg.Search.Provider = c.Search.Provider
		cfg.Search.MaxResults = int(c.Search.MaxResults)
		if c.Search.Tavily != nil {
			cfg.Search.Tavily.APIKey = c.Search.Tavily.ApiKey
			cfg.Search.Tavily.Depth = c.Search.Tavily.Depth
		}
		if c.Search.Searxng != nil {
			cfg.Search.SearXNG = config.SearXNGConfig{
				BaseURL: c.Search.Searxng.BaseUrl,
				Timeout: int(c.Search.Searxng.Timeout),
			}
		}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS: int(c.Concurrency.Qps),
			RPM: int(c.Concurrency.Rpm),
		}
	}
	if c.Retry != nil {
		cfg.Retry.Max = int(c.Retry.Max)
		cfg.Retry.BaseDelay, _ = time.ParseDuration(c.Retry.BaseDelay)
	}
	if c.Cache != nil {
		cfg.Cache.TTL, _ = time.ParseDuration(c.Cache.TTL)
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg
}
