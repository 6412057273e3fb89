package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/search"
)

const (
	defaultEndpoint   = "https://api.tavily.com/search"
	defaultMaxResults = 5
	maxErrorBody      = 512
)

// ErrUnauthorized API Key 无效或额度已用尽
var ErrUnauthorized = errors.New("tavily: unauthorized")

// Client Tavily 检索客户端
type Client struct {
	apiKey   string
	endpoint string
	depth    string
	hc       *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithEndpoint 覆盖 API 地址
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient 使用自定义的 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithAdvancedDepth 使用 advanced 检索深度，消耗两倍额度
func WithAdvancedDepth() Option {
	return func(c *Client) { c.depth = "advanced" }
}

// NewClient 创建 Tavily 客户端
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		depth:    "basic",
		hc:       &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ search.Searcher = (*Client)(nil)

type searchPayload struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	Topic       string `json:"topic"`
	MaxResults  int    `json:"max_results"`
	Country     string `json:"country,omitempty"`
}

type searchReply struct {
	Query        string      `json:"query"`
	Results      []replyItem `json:"results"`
	ResponseTime float64     `json:"response_time"`
}

type replyItem struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

// Search 实现 search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	payload := searchPayload{
		Query:       req.Query,
		SearchDepth: c.depth,
		Topic:       req.Topic,
		MaxResults:  req.MaxResults,
	}
	if payload.Topic == "" {
		payload.Topic = search.TopicGeneral
	}
	if payload.MaxResults <= 0 {
		payload.MaxResults = defaultMaxResults
	}
	// country 只对 general 主题生效，取值为小写英文国家名
	if payload.Topic == search.TopicGeneral && req.Country != "" {
		payload.Country = strings.ToLower(strings.TrimSpace(req.Country))
	}

	reply, err := c.post(ctx, payload)
	if err != nil {
		return nil, err
	}

	results := make([]search.Result, 0, len(reply.Results))
	for _, item := range reply.Results {
		results = append(results, search.Result{
			Title:         item.Title,
			URL:           item.URL,
			Content:       item.Content,
			Score:         item.Score,
			PublishedDate: item.PublishedDate,
		})
	}
	return &search.Response{Results: search.Dedup(results)}, nil
}

func (c *Client) post(ctx context.Context, payload searchPayload) (*searchReply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d)", ErrUnauthorized, res.StatusCode)
	case res.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, fmt.Errorf("tavily api error (status %d): %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var reply searchReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}
	return &reply, nil
}
