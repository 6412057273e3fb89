package data

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
	"github.com/iWorld-y/trade_compass/app/display/internal/conf"
)

func TestNewDataSQLite3Alias(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "compass.db")
	d, cleanup, err := NewData(&conf.Data{Database: &conf.Database{Driver: "sqlite3", Source: path}}, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, d.Store())

	ctx := context.Background()
	id, err := d.Store().SaveAnalysis(ctx, &model.AnalysisResult{
		Keyword:        "Ceramic Mugs",
		MarkdownReport: "## 报告",
		StructuredData: &model.MarketData{TopCountries: []model.ChartDataPoint{{Name: "Japan", Value: 80}}},
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)

	r := NewAnalysisRepo(d, log.DefaultLogger)
	items, total, err := r.ListAnalyses(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Japan", items[0].TopCountry)

	got, err := r.GetAnalysis(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ceramic Mugs", got.Keyword)

	_, err = r.GetAnalysis(ctx, id+100)
	assert.True(t, kerrors.IsNotFound(err))
}

func TestNewDataWithoutDatabase(t *testing.T) {
	d, cleanup, err := NewData(&conf.Data{}, log.DefaultLogger)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, d.Store())

	r := NewAnalysisRepo(d, log.DefaultLogger)
	items, total, err := r.ListAnalyses(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	_, err = r.GetAnalysis(context.Background(), 1)
	assert.True(t, kerrors.IsNotFound(err))
}

func TestNewDataUnsupportedDriver(t *testing.T) {
	_, _, err := NewData(&conf.Data{Database: &conf.Database{Driver: "mysql", Source: "x"}}, log.DefaultLogger)
	assert.ErrorContains(t, err, "unsupported db driver")
}
