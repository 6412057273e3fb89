package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/search"
)

const userAgent = "Mozilla/5.0 (compatible; trade-compass/1.0)"

// Client 自建 SearXNG 实例的检索客户端
type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient 创建 SearXNG 客户端，timeout 单位为秒，0 表示 30 秒
func NewClient(baseURL string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t <= 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: t},
	}
}

var _ search.Searcher = (*Client)(nil)

type searchReply struct {
	Query   string      `json:"query"`
	Results []replyItem `json:"results"`
}

type replyItem struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	PublishedDate string  `json:"publishedDate"`
	Score         float64 `json:"score"`
}

// Search 实现 search.Searcher。SearXNG 没有按国家过滤的参数，目标市场直接拼到检索词里
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	endpoint, err := c.endpoint(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("searxng api error (status %d): %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var reply searchReply
	if err := json.NewDecoder(res.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
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
	results = search.Dedup(results)
	if req.MaxResults > 0 && len(results) > req.MaxResults {
		results = results[:req.MaxResults]
	}
	return &search.Response{Results: results}, nil
}

func (c *Client) endpoint(req *search.Request) (string, error) {
	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	query := strings.TrimSpace(req.Query)
	if country := strings.TrimSpace(req.Country); country != "" && !strings.Contains(strings.ToLower(query), strings.ToLower(country)) {
		query += " " + country
	}

	category := search.TopicGeneral
	if req.Topic == search.TopicNews {
		category = search.TopicNews
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("categories", category)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
