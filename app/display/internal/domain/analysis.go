package domain

import (
	"time"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

// Job 一次异步分析任务
type Job struct {
	ID        string
	Keyword   string
	Status    model.AnalysisStatus
	Stage     string
	Progress  int
	Result    *model.AnalysisResult
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Finished 任务是否已结束
func (j *Job) Finished() bool {
	return j.Status == model.StatusSuccess || j.Status == model.StatusError
}

// HistoryPage 历史记录分页结果
type HistoryPage struct {
	Items    []*model.AnalysisSummary
	Total    int
	Page     int
	PageSize int
}
