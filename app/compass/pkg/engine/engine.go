package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/config"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/llm"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/logger"
	dm "github.com/iWorld-y/trade_compass/app/compass/pkg/model"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/parser"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/prompt"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/search"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/search/factory"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/storage"
)

var (
	// ErrEmptyKeyword 关键词为空，不会发起任何请求
	ErrEmptyKeyword = errors.New("keyword is empty")
	// ErrEmptyRegion 地区为空
	ErrEmptyRegion = errors.New("region is empty")
	// ErrEmptyResponse 模型返回空文本
	ErrEmptyResponse = errors.New("empty response from model")
)

// 买家检索的兜底文案
const (
	NoBuyerData    = "No specific buyer data found."
	BuyerDataError = "Error fetching buyer data."
)

// DefaultBuyersModel Gemini 下买家检索使用的模型
const DefaultBuyersModel = "gemini-2.5-flash"

const (
	minContentLen = 500
	maxContentLen = 2000
	fetchTimeout  = 30 * time.Second
	maxPageSize   = 5 << 20
)

var fetchClient = &http.Client{}

// Store 引擎需要的持久化能力
type Store interface {
	SaveAnalysis(ctx context.Context, result *dm.AnalysisResult) (int, error)
	LatestByKeyword(ctx context.Context, keyword string, since time.Time) (*dm.AnalysisResult, error)
}

// ProgressFunc 进度回调
type ProgressFunc func(status string, progress int)

// Engine 核心处理引擎
type Engine struct {
	cfg       *config.Config
	store     Store
	generator llm.Generator
	searcher  search.Searcher
	limiter   *rate.Limiter
	fetch     func(ctx context.Context, url string) (string, error)
	now       func() time.Time
}

// NewEngine 创建引擎实例，store 可以为 nil
func NewEngine(cfg *config.Config, store Store) (*Engine, error) {
	ctx := context.Background()

	generator, err := llm.NewGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}

	var searcher search.Searcher
	if !generator.Grounded() {
		searcher, err = factory.NewSearcher(cfg)
		if err != nil {
			return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
		}
		if searcher == nil {
			logger.Log.Warnf("模型 [%s] 不具备搜索能力且未配置搜索服务，报告将缺少实时数据", generator.Name())
		}
	}

	return NewEngineWith(cfg, generator, searcher, store), nil
}

// NewEngineWith 使用已构造好的依赖创建引擎
func NewEngineWith(cfg *config.Config, generator llm.Generator, searcher search.Searcher, store Store) *Engine {
	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	burst := cfg.Concurrency.QPS
	if burst <= 0 {
		burst = 1
	}
	logger.Log.Infof("限流器已配置: Limit=%.2f req/s, Burst=%d", limit, burst)

	return &Engine{
		cfg:       cfg,
		store:     store,
		generator: generator,
		searcher:  searcher,
		limiter:   rate.NewLimiter(limit, burst),
		fetch:     fetchAndCleanContent,
		now:       time.Now,
	}
}

// Analyze 生成关键词的出海市场分析报告
func (e *Engine) Analyze(ctx context.Context, keyword string, progress ProgressFunc) (*dm.AnalysisResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	report := func(status string, p int) {
		if progress != nil {
			progress(status, p)
		}
	}

	logger.Log.Infof("开始分析关键词 [%s]", keyword)
	report("starting", 0)

	if cached := e.lookupCache(ctx, keyword); cached != nil {
		logger.Log.Infof("关键词 [%s] 命中历史结果 #%d", keyword, cached.ID)
		report("completed", 100)
		return cached, nil
	}

	p := prompt.Market(keyword)
	var searchSources []dm.GroundingSource
	if !e.generator.Grounded() && e.searcher != nil {
		report("searching", 20)
		results := e.searchContext(ctx, &search.Request{Query: search.MarketQuery(keyword)})
		p = prompt.WithSearchContext(p, results)
		searchSources = toSources(results)
	}

	report("generating", 40)
	temp := e.cfg.LLM.Temperature
	resp, err := e.generate(ctx, llm.Request{
		Prompt:      p,
		System:      prompt.SystemPrompt,
		Temperature: &temp,
		Grounding:   llm.GroundingSearch,
	})
	if err != nil {
		logger.Log.Errorf("关键词 [%s] 分析失败: %v", keyword, err)
		return nil, err
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, ErrEmptyResponse
	}

	report("parsing", 80)
	markdown, data := parser.Parse(resp.Text)
	if data == nil {
		logger.Log.Warnf("关键词 [%s] 的图表数据缺失或无法解析", keyword)
	}

	sources := resp.Sources
	if len(sources) == 0 {
		sources = searchSources
	}
	result := &dm.AnalysisResult{
		Keyword:        keyword,
		MarkdownReport: markdown,
		StructuredData: data,
		Sources:        sources,
		SearchQueries:  resp.SearchQueries,
		Model:          resp.Model,
		CreatedAt:      e.now(),
	}

	if e.store != nil {
		id, err := e.store.SaveAnalysis(ctx, result)
		if err != nil {
			logger.Log.Errorf("保存分析结果失败 [%s]: %v", keyword, err)
		} else {
			result.ID = id
		}
	}

	report("completed", 100)
	logger.Log.Infof("关键词 [%s] 分析完成 (来源: %d)", keyword, len(result.Sources))
	return result, nil
}

// FindBuyers 检索指定地区的批发商/进口商。模型调用失败时返回兜底文案而不是错误
func (e *Engine) FindBuyers(ctx context.Context, keyword, region string) (*dm.BuyerLeads, error) {
	keyword = strings.TrimSpace(keyword)
	region = strings.TrimSpace(region)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}
	if region == "" {
		return nil, ErrEmptyRegion
	}

	leads := &dm.BuyerLeads{Keyword: keyword, Region: region}

	p := prompt.Buyers(keyword, region)
	if !e.generator.Grounded() && e.searcher != nil {
		results := e.searchContext(ctx, &search.Request{Query: search.BuyerQuery(keyword, region), Country: region})
		p = prompt.WithSearchContext(p, results)
		leads.Sources = toSources(results)
	}

	req := llm.Request{Prompt: p, Grounding: llm.GroundingMaps}
	if e.generator.Name() == "gemini" {
		req.Model = e.cfg.LLM.BuyersModel
		if req.Model == "" {
			req.Model = DefaultBuyersModel
		}
	}

	resp, err := e.generate(ctx, req)
	if err != nil {
		logger.Log.Errorf("买家检索失败 [%s @ %s]: %v", keyword, region, err)
		leads.Text = BuyerDataError
		return leads, nil
	}

	leads.Text = strings.TrimSpace(resp.Text)
	if leads.Text == "" {
		leads.Text = NoBuyerData
	}
	if len(resp.Sources) > 0 {
		leads.Sources = resp.Sources
	}
	return leads, nil
}

// FindBuyersInRegions 并发检索多个地区，结果顺序与 regions 一致
func (e *Engine) FindBuyersInRegions(ctx context.Context, keyword string, regions []string) ([]*dm.BuyerLeads, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, ErrEmptyKeyword
	}
	if len(regions) == 0 {
		return nil, ErrEmptyRegion
	}

	leads := make([]*dm.BuyerLeads, len(regions))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(e.cfg.Concurrency.QPS, 1))
	for i, region := range regions {
		eg.Go(func() error {
			l, err := e.FindBuyers(egCtx, keyword, region)
			if err != nil {
				return fmt.Errorf("region %q: %w", region, err)
			}
			leads[i] = l
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return leads, nil
}

// generate 调用模型，遇到 429 时按指数退避重试
func (e *Engine) generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	maxRetries := e.cfg.Retry.Max
	baseDelay := e.cfg.Retry.BaseDelay
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := e.generator.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !llm.IsRateLimited(err) {
			return nil, err
		}

		lastErr = err
		if i == maxRetries {
			break
		}
		delay := baseDelay * time.Duration(1<<i)
		logger.Log.Warnf("模型限流，%v 后重试 (%d/%d)", delay, i+1, maxRetries)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (e *Engine) lookupCache(ctx context.Context, keyword string) *dm.AnalysisResult {
	if e.store == nil || e.cfg.Cache.TTL <= 0 {
		return nil
	}
	cached, err := e.store.LatestByKeyword(ctx, keyword, e.now().Add(-e.cfg.Cache.TTL))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Log.Errorf("查询历史结果失败 [%s]: %v", keyword, err)
		}
		return nil
	}
	return cached
}

// searchContext 为不具备原生搜索能力的模型准备检索上下文，失败时返回空结果
func (e *Engine) searchContext(ctx context.Context, req *search.Request) []search.Result {
	req.Topic = search.TopicGeneral
	req.MaxResults = e.cfg.Search.MaxResults
	resp, err := e.searcher.Search(ctx, req)
	if err != nil {
		logger.Log.Errorf("搜索失败 [%s]: %v", req.Query, err)
		return nil
	}

	results := make([]search.Result, 0, len(resp.Results))
	for _, item := range resp.Results {
		content := item.Content
		// 摘要太短时抓取原文
		if len([]rune(content)) < minContentLen && item.URL != "" && ctx.Err() == nil {
			fetched, err := e.fetch(ctx, item.URL)
			if err == nil && len(fetched) > len(content) {
				content = fetched
			}
		}
		item.Content = truncate(strings.TrimSpace(content), maxContentLen)
		results = append(results, item)
	}
	return results
}

// fetchAndCleanContent 抓取网页并提取正文，受 ctx 取消控制
func fetchAndCleanContent(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; trade-compass/1.0)")

	resp, err := fetchClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxPageSize), u)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func toSources(results []search.Result) []dm.GroundingSource {
	var sources []dm.GroundingSource
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		sources = append(sources, dm.GroundingSource{Kind: dm.SourceWeb, URI: r.URL, Title: r.Title})
	}
	return sources
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
