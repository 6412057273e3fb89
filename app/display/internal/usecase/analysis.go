package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
	"github.com/iWorld-y/trade_compass/app/display/internal/conf"
	"github.com/iWorld-y/trade_compass/app/display/internal/domain"
	"github.com/iWorld-y/trade_compass/app/display/internal/repo"
)

// ErrorText 分析失败时展示给用户的提示
const ErrorText = "分析失败，请检查网络或稍后重试。"

const (
	defaultJobTTL     = 30 * time.Minute
	defaultJobTimeout = 3 * time.Minute
	maxPageSize       = 50
)

type jobEntry struct {
	job    *domain.Job
	cancel context.CancelFunc
}

// AnalysisUseCase 分析任务业务逻辑，维护 IDLE -> LOADING -> SUCCESS|ERROR 状态机
type AnalysisUseCase struct {
	analyzer repo.MarketAnalyzer
	repo     repo.AnalysisRepo
	log      *log.Helper

	mu      sync.Mutex
	jobs    map[string]*jobEntry
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAnalysisUseCase 创建分析任务业务逻辑实例，cleanup 会取消并等待所有进行中的任务
func NewAnalysisUseCase(analyzer repo.MarketAnalyzer, r repo.AnalysisRepo, c *conf.Job, logger log.Logger) (*AnalysisUseCase, func(), error) {
	ttl, timeout := defaultJobTTL, defaultJobTimeout
	if c != nil {
		if d, err := time.ParseDuration(c.TTL); err == nil && d > 0 {
			ttl = d
		}
		if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	uc := &AnalysisUseCase{
		analyzer: analyzer,
		repo:     r,
		log:      log.NewHelper(logger),
		jobs:     make(map[string]*jobEntry),
		ttl:      ttl,
		timeout:  timeout,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
	return uc, uc.Close, nil
}

// Start 创建分析任务并在后台执行，立即返回 LOADING 状态
func (uc *AnalysisUseCase) Start(ctx context.Context, keyword string) (*domain.Job, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.BadRequest("EMPTY_KEYWORD", "keyword is required")
	}
	if uc.ctx.Err() != nil {
		return nil, errors.ServiceUnavailable("SHUTTING_DOWN", "server is shutting down")
	}

	now := uc.now()
	job := &domain.Job{
		ID:        uuid.NewString(),
		Keyword:   keyword,
		Status:    model.StatusIdle,
		CreatedAt: now,
	}
	uc.transition(job, model.StatusLoading)

	jobCtx, cancel := context.WithTimeout(uc.ctx, uc.timeout)

	uc.mu.Lock()
	uc.purgeLocked(now)
	uc.jobs[job.ID] = &jobEntry{job: job, cancel: cancel}
	snapshot := *job
	uc.mu.Unlock()

	uc.wg.Add(1)
	go uc.run(jobCtx, cancel, job.ID, keyword)

	uc.log.WithContext(ctx).Infof("analysis job %s started: %s", job.ID, keyword)
	return &snapshot, nil
}

func (uc *AnalysisUseCase) run(ctx context.Context, cancel context.CancelFunc, id, keyword string) {
	defer uc.wg.Done()
	defer cancel()

	result, err := uc.analyzer.Analyze(ctx, keyword, func(stage string, progress int) {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		if e, ok := uc.jobs[id]; ok && e.job.Status == model.StatusLoading {
			e.job.Stage = stage
			e.job.Progress = progress
			e.job.UpdatedAt = uc.now()
		}
	})

	uc.mu.Lock()
	defer uc.mu.Unlock()
	e, ok := uc.jobs[id]
	if !ok {
		// 任务已被重置
		return
	}
	if err != nil {
		uc.log.Errorf("analysis job %s failed: %v", id, err)
		e.job.Error = ErrorText
		uc.transition(e.job, model.StatusError)
		return
	}
	e.job.Result = result
	e.job.Progress = 100
	uc.transition(e.job, model.StatusSuccess)
}

// Get 查询任务状态
func (uc *AnalysisUseCase) Get(ctx context.Context, id string) (*domain.Job, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.purgeLocked(uc.now())

	e, ok := uc.jobs[id]
	if !ok {
		return nil, errors.NotFound("JOB_NOT_FOUND", "analysis job not found")
	}
	snapshot := *e.job
	return &snapshot, nil
}

// Reset 丢弃任务并回到 IDLE，进行中的分析会被取消
func (uc *AnalysisUseCase) Reset(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	e, ok := uc.jobs[id]
	if !ok {
		return errors.NotFound("JOB_NOT_FOUND", "analysis job not found")
	}
	uc.transition(e.job, model.StatusIdle)
	e.cancel()
	delete(uc.jobs, id)
	return nil
}

// Buyers 检索地区买家
func (uc *AnalysisUseCase) Buyers(ctx context.Context, keyword, region string) (*model.BuyerLeads, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, errors.BadRequest("EMPTY_KEYWORD", "keyword is required")
	}
	if strings.TrimSpace(region) == "" {
		return nil, errors.BadRequest("EMPTY_REGION", "region is required")
	}
	return uc.analyzer.FindBuyers(ctx, keyword, region)
}

// History 分页列出已保存的分析
func (uc *AnalysisUseCase) History(ctx context.Context, page, pageSize int) (*domain.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	items, total, err := uc.repo.ListAnalyses(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &domain.HistoryPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Report 获取已保存的分析结果
func (uc *AnalysisUseCase) Report(ctx context.Context, id int) (*model.AnalysisResult, error) {
	return uc.repo.GetAnalysis(ctx, id)
}

// Close 取消所有进行中的任务并等待退出
func (uc *AnalysisUseCase) Close() {
	uc.cancel()
	uc.wg.Wait()
}

func (uc *AnalysisUseCase) transition(job *domain.Job, to model.AnalysisStatus) {
	if !job.Status.CanTransition(to) {
		uc.log.Warnf("job %s: invalid transition %s -> %s", job.ID, job.Status, to)
		return
	}
	job.Status = to
	job.UpdatedAt = uc.now()
}

// purgeLocked 清理超过 TTL 的已结束任务，调用方需持有锁
func (uc *AnalysisUseCase) purgeLocked(now time.Time) {
	for id, e := range uc.jobs {
		if e.job.Finished() && now.Sub(e.job.UpdatedAt) > uc.ttl {
			delete(uc.jobs, id)
		}
	}
}
