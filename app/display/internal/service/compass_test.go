package service

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/engine"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
	"github.com/iWorld-y/trade_compass/app/display/internal/usecase"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, keyword string, progress engine.ProgressFunc) (*model.AnalysisResult, error) {
	return &model.AnalysisResult{
		Keyword:        keyword,
		MarkdownReport: "## 概览\n[链接](https://example.com)",
		StructuredData: &model.MarketData{TopCountries: []model.ChartDataPoint{{Name: "Germany", Value: 90}}},
		Sources:        []model.GroundingSource{{Kind: model.SourceWeb, URI: "https://example.com/a"}},
	}, nil
}

func (stubAnalyzer) FindBuyers(ctx context.Context, keyword, region string) (*model.BuyerLeads, error) {
	return &model.BuyerLeads{Keyword: keyword, Region: region, Text: engine.NoBuyerData}, nil
}

type stubRepo struct{}

func (stubRepo) ListAnalyses(ctx context.Context, page, pageSize int) ([]*model.AnalysisSummary, int, error) {
	return []*model.AnalysisSummary{{ID: 3, Keyword: "Pet Toys", TopCountry: "Japan"}}, 1, nil
}

func (stubRepo) GetAnalysis(ctx context.Context, id int) (*model.AnalysisResult, error) {
	if id != 3 {
		return nil, kerrors.NotFound("ANALYSIS_NOT_FOUND", "analysis not found")
	}
	return &model.AnalysisResult{ID: 3, Keyword: "Pet Toys", MarkdownReport: "# 宠物玩具"}, nil
}

func newTestServer(t *testing.T) *http.Server {
	t.Helper()
	uc, cleanup, err := usecase.NewAnalysisUseCase(stubAnalyzer{}, stubRepo{}, nil, log.DefaultLogger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	srv := http.NewServer()
	RegisterCompassHTTPServer(srv, NewCompassService(uc, log.DefaultLogger))
	return srv
}

func do(srv *http.Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestStartAndPollAnalysis(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, nethttp.MethodPost, "/api/analyses", `{"keyword":"Solar Panels"}`)
	require.Equal(t, nethttp.StatusAccepted, w.Code, w.Body.String())

	var started JobReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.Equal(t, model.StatusLoading, started.Status)
	assert.Equal(t, "Solar Panels", started.Keyword)

	var job JobReply
	require.Eventually(t, func() bool {
		w := do(srv, nethttp.MethodGet, "/api/analyses/"+started.ID, "")
		if w.Code != nethttp.StatusOK {
			return false
		}
		job = JobReply{}
		return json.Unmarshal(w.Body.Bytes(), &job) == nil && job.Status == model.StatusSuccess
	}, 2*time.Second, 10*time.Millisecond)

	require.NotNil(t, job.Result)
	assert.Contains(t, job.HTML, `target="_blank"`)
	require.Len(t, job.Bars, 1)
	assert.Equal(t, "#0f766e", job.Bars[0].Color)
	require.Len(t, job.Sources, 1)
	assert.Equal(t, "Source", job.Sources[0].Title)
	assert.NotEmpty(t, job.Action)

	w = do(srv, nethttp.MethodDelete, "/api/analyses/"+started.ID, "")
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"IDLE"`)

	w = do(srv, nethttp.MethodGet, "/api/analyses/"+started.ID, "")
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}

func TestStartAnalysisEmptyKeyword(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, nethttp.MethodPost, "/api/analyses", `{"keyword":"  "}`)
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "EMPTY_KEYWORD")
}

func TestFindBuyersRoute(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, nethttp.MethodGet, "/api/buyers?keyword=Solar+Panels&region=Germany", "")
	require.Equal(t, nethttp.StatusOK, w.Code)

	var leads model.BuyerLeads
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &leads))
	assert.Equal(t, "Germany", leads.Region)
	assert.Equal(t, engine.NoBuyerData, leads.Text)

	w = do(srv, nethttp.MethodGet, "/api/buyers?keyword=Solar+Panels", "")
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

func TestHistoryRoute(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, nethttp.MethodGet, "/api/history?page=1&page_size=5", "")
	require.Equal(t, nethttp.StatusOK, w.Code)

	var reply HistoryReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Equal(t, 1, reply.Total)
	assert.Equal(t, 5, reply.PageSize)
	require.Len(t, reply.Items, 1)
	assert.Equal(t, "Japan", reply.Items[0].TopCountry)
}

func TestReportPage(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, nethttp.MethodGet, "/report/3", "")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "宠物玩具")

	w = do(srv, nethttp.MethodGet, "/report/9", "")
	assert.Equal(t, nethttp.StatusNotFound, w.Code)

	w = do(srv, nethttp.MethodGet, "/report/abc", "")
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}
