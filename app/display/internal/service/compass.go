package service

import (
	"bytes"
	"context"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/render"
	"github.com/iWorld-y/trade_compass/app/display/internal/domain"
	"github.com/iWorld-y/trade_compass/app/display/internal/usecase"
)

const (
	OperationStartAnalysis = "/compass.v1.Compass/StartAnalysis"
	OperationGetAnalysis   = "/compass.v1.Compass/GetAnalysis"
	OperationResetAnalysis = "/compass.v1.Compass/ResetAnalysis"
	OperationFindBuyers    = "/compass.v1.Compass/FindBuyers"
	OperationListHistory   = "/compass.v1.Compass/ListHistory"
	OperationGetReport     = "/compass.v1.Compass/GetReport"
)

// SuggestedKeywords 首页推荐的关键词
var SuggestedKeywords = []string{"Solar Panels", "Ceramic Mugs", "Electric Bikes", "Smart Watches", "Pet Toys"}

type StartAnalysisReq struct {
	Keyword string `json:"keyword"`
}

// JobReply 任务状态，SUCCESS 时附带结果与渲染后的报告正文
type JobReply struct {
	ID        string                `json:"id"`
	Keyword   string                `json:"keyword"`
	Status    model.AnalysisStatus  `json:"status"`
	Stage     string                `json:"stage,omitempty"`
	Progress  int                   `json:"progress"`
	Error     string                `json:"error,omitempty"`
	Result    *model.AnalysisResult `json:"result,omitempty"`
	HTML      string                `json:"html,omitempty"`
	Sources   []render.Source       `json:"sources,omitempty"`
	Bars      []render.Bar          `json:"bars,omitempty"`
	Action    string                `json:"action,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
}

type HistoryReply struct {
	Items    []*model.AnalysisSummary `json:"items"`
	Total    int                      `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"pageSize"`
}

type ResetReply struct {
	Status model.AnalysisStatus `json:"status"`
}

// CompassService 出海罗盘 HTTP 接口
type CompassService struct {
	uc  *usecase.AnalysisUseCase
	log *log.Helper
}

func NewCompassService(uc *usecase.AnalysisUseCase, logger log.Logger) *CompassService {
	return &CompassService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// RegisterCompassHTTPServer 注册 API 路由
func RegisterCompassHTTPServer(s *http.Server, srv *CompassService) {
	r := s.Route("/")
	r.POST("/api/analyses", srv.startAnalysisHandler)
	r.GET("/api/analyses/{id}", srv.getAnalysisHandler)
	r.DELETE("/api/analyses/{id}", srv.resetAnalysisHandler)
	r.GET("/api/buyers", srv.findBuyersHandler)
	r.GET("/api/history", srv.listHistoryHandler)
	r.GET("/report/{id}", srv.reportPageHandler)
}

func (s *CompassService) StartAnalysis(ctx context.Context, req *StartAnalysisReq) (*JobReply, error) {
	job, err := s.uc.Start(ctx, req.Keyword)
	if err != nil {
		return nil, err
	}
	return toJobReply(job), nil
}

func (s *CompassService) GetAnalysis(ctx context.Context, id string) (*JobReply, error) {
	job, err := s.uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toJobReply(job), nil
}

func (s *CompassService) ResetAnalysis(ctx context.Context, id string) (*ResetReply, error) {
	if err := s.uc.Reset(ctx, id); err != nil {
		return nil, err
	}
	return &ResetReply{Status: model.StatusIdle}, nil
}

func (s *CompassService) FindBuyers(ctx context.Context, keyword, region string) (*model.BuyerLeads, error) {
	return s.uc.Buyers(ctx, keyword, region)
}

func (s *CompassService) ListHistory(ctx context.Context, page, pageSize int) (*HistoryReply, error) {
	p, err := s.uc.History(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &HistoryReply{Items: p.Items, Total: p.Total, Page: p.Page, PageSize: p.PageSize}, nil
}

func (s *CompassService) startAnalysisHandler(ctx http.Context) error {
	var in StartAnalysisReq
	if err := ctx.Bind(&in); err != nil {
		return errors.BadRequest("INVALID_BODY", err.Error())
	}
	http.SetOperation(ctx, OperationStartAnalysis)
	h := ctx.Middleware(func(c context.Context, req interface{}) (interface{}, error) {
		return s.StartAnalysis(c, req.(*StartAnalysisReq))
	})
	out, err := h(ctx, &in)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusAccepted, out)
}

func (s *CompassService) getAnalysisHandler(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	http.SetOperation(ctx, OperationGetAnalysis)
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return s.GetAnalysis(c, id)
	})
	out, err := h(ctx, id)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, out)
}

func (s *CompassService) resetAnalysisHandler(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	http.SetOperation(ctx, OperationResetAnalysis)
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return s.ResetAnalysis(c, id)
	})
	out, err := h(ctx, id)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, out)
}

func (s *CompassService) findBuyersHandler(ctx http.Context) error {
	q := ctx.Query()
	keyword, region := q.Get("keyword"), q.Get("region")
	http.SetOperation(ctx, OperationFindBuyers)
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return s.FindBuyers(c, keyword, region)
	})
	out, err := h(ctx, q)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, out)
}

func (s *CompassService) listHistoryHandler(ctx http.Context) error {
	q := ctx.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	http.SetOperation(ctx, OperationListHistory)
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return s.ListHistory(c, page, pageSize)
	})
	out, err := h(ctx, q)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, out)
}

// reportPageHandler 服务端渲染已保存的报告
func (s *CompassService) reportPageHandler(ctx http.Context) error {
	id, err := strconv.Atoi(ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest("INVALID_ID", "report id must be a number")
	}
	http.SetOperation(ctx, OperationGetReport)
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return s.uc.Report(c, id)
	})
	out, err := h(ctx, id)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.Report(&buf, out.(*model.AnalysisResult)); err != nil {
		s.log.WithContext(ctx).Errorf("render report %d: %v", id, err)
		return errors.InternalServer("RENDER_FAILED", "failed to render report")
	}
	w := ctx.Response()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, err = w.Write(buf.Bytes())
	return err
}

func toJobReply(job *domain.Job) *JobReply {
	reply := &JobReply{
		ID:        job.ID,
		Keyword:   job.Keyword,
		Status:    job.Status,
		Stage:     job.Stage,
		Progress:  job.Progress,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
	}
	if job.Status == model.StatusSuccess && job.Result != nil {
		reply.Result = job.Result
		reply.HTML = string(render.Markdown(job.Result.MarkdownReport))
		reply.Sources = render.ValidSources(job.Result.Sources)
		reply.Action = render.Action(job.Result.StructuredData)
		if job.Result.StructuredData != nil {
			reply.Bars = render.ChartBars(job.Result.StructuredData.TopCountries)
		}
	}
	return reply
}
