package data

import (
	"context"
	"errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/storage"
	"github.com/iWorld-y/trade_compass/app/display/internal/repo"
)

type analysisRepo struct {
	data *Data
	log  *log.Helper
}

func NewAnalysisRepo(data *Data, logger log.Logger) repo.AnalysisRepo {
	return &analysisRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *analysisRepo) ListAnalyses(ctx context.Context, page, pageSize int) ([]*model.AnalysisSummary, int, error) {
	if r.data.store == nil {
		return []*model.AnalysisSummary{}, 0, nil
	}
	items, total, err := r.data.store.ListAnalyses(ctx, page, pageSize)
	if err != nil {
		r.log.WithContext(ctx).Errorf("list analyses: %v", err)
		return nil, 0, err
	}
	if items == nil {
		items = []*model.AnalysisSummary{}
	}
	return items, total, nil
}

func (r *analysisRepo) GetAnalysis(ctx context.Context, id int) (*model.AnalysisResult, error) {
	if r.data.store == nil {
		return nil, kerrors.NotFound("ANALYSIS_NOT_FOUND", "analysis history is disabled")
	}
	result, err := r.data.store.GetAnalysis(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, kerrors.NotFound("ANALYSIS_NOT_FOUND", "analysis not found")
		}
		return nil, err
	}
	return result, nil
}
