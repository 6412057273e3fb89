package repo

import (
	"context"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/engine"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

// AnalysisRepo 已保存分析结果的仓库接口
type AnalysisRepo interface {
	// ListAnalyses 分页获取历史摘要
	ListAnalyses(ctx context.Context, page, pageSize int) ([]*model.AnalysisSummary, int, error)
	// GetAnalysis 根据ID获取完整结果
	GetAnalysis(ctx context.Context, id int) (*model.AnalysisResult, error)
}

// MarketAnalyzer 市场分析能力，由 compass 引擎实现
type MarketAnalyzer interface {
	Analyze(ctx context.Context, keyword string, progress engine.ProgressFunc) (*model.AnalysisResult, error)
	FindBuyers(ctx context.Context, keyword, region string) (*model.BuyerLeads, error)
}
