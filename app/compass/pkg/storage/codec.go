package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

const columns = "id, keyword, markdown_report, structured_data, sources, search_queries, model, created_at"

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

type encodedRow struct {
	data    interface{}
	sources string
	queries string
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func toRow(r *model.AnalysisResult) (*encodedRow, error) {
	row := &encodedRow{}
	if r.StructuredData != nil {
		b, err := json.Marshal(r.StructuredData)
		if err != nil {
			return nil, fmt.Errorf("encode structured data: %w", err)
		}
		row.data = string(b)
	}

	sources := r.Sources
	if sources == nil {
		sources = []model.GroundingSource{}
	}
	b, err := json.Marshal(sources)
	if err != nil {
		return nil, fmt.Errorf("encode sources: %w", err)
	}
	row.sources = sanitize(string(b))

	queries := r.SearchQueries
	if queries == nil {
		queries = []string{}
	}
	if b, err = json.Marshal(queries); err != nil {
		return nil, fmt.Errorf("encode search queries: %w", err)
	}
	row.queries = sanitize(string(b))
	return row, nil
}

func scanAnalysis(row rowScanner) (*model.AnalysisResult, error) {
	var (
		r       model.AnalysisResult
		data    sql.NullString
		sources string
		queries string
		created interface{}
	)
	err := row.Scan(&r.ID, &r.Keyword, &r.MarkdownReport, &data, &sources, &queries, &r.Model, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if data.Valid && data.String != "" {
		var md model.MarketData
		if err := json.Unmarshal([]byte(data.String), &md); err != nil {
			return nil, fmt.Errorf("decode structured data #%d: %w", r.ID, err)
		}
		r.StructuredData = &md
	}
	if err := json.Unmarshal([]byte(sources), &r.Sources); err != nil {
		return nil, fmt.Errorf("decode sources #%d: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(queries), &r.SearchQueries); err != nil {
		return nil, fmt.Errorf("decode search queries #%d: %w", r.ID, err)
	}
	if r.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("decode created_at #%d: %w", r.ID, err)
	}
	return &r, nil
}

// parseTime 兼容驱动直接返回 time.Time 或文本两种情况
func parseTime(v interface{}) (time.Time, error) {
	var s string
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s = t
	case []byte:
		s = string(t)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected type %T", v)
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
