package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/config"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("analysis not found")

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id SERIAL PRIMARY KEY,
	keyword TEXT NOT NULL,
	markdown_report TEXT NOT NULL,
	structured_data JSONB,
	sources JSONB NOT NULL DEFAULT '[]',
	search_queries JSONB NOT NULL DEFAULT '[]',
	model TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_analyses_keyword ON analyses (lower(keyword), created_at DESC);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	keyword TEXT NOT NULL,
	markdown_report TEXT NOT NULL,
	structured_data TEXT,
	sources TEXT NOT NULL DEFAULT '[]',
	search_queries TEXT NOT NULL DEFAULT '[]',
	model TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_keyword ON analyses (keyword, created_at);
`

// Storage 分析结果持久化，支持 PostgreSQL 与 SQLite
type Storage struct {
	db     *sql.DB
	driver string
}

// NewStorage 按配置打开数据库并初始化表结构
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	return Open(context.Background(), driver, dsn)
}

// Open 打开连接并建表。sqlite 只保留一个连接，避免并发写入时 database is locked
func Open(ctx context.Context, driver, dsn string) (*Storage, error) {
	driver, err := NormalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite && isSQLiteFile(dsn) {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Storage{db: db, driver: driver}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// New 基于已打开的连接创建存储，由调用方负责建表
func New(db *sql.DB, driver string) *Storage {
	if d, err := NormalizeDriver(driver); err == nil {
		driver = d
	}
	return &Storage{db: db, driver: driver}
}

// NormalizeDriver 统一驱动名。modernc 只注册了 "sqlite"
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverPostgres, "postgresql", "pq":
		return DriverPostgres, nil
	case DriverSQLite, "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported db driver: %s", driver)
	}
}

// DSN 由配置生成驱动名与连接串
func DSN(cfg config.DBConfig) (string, string, error) {
	driver, err := NormalizeDriver(cfg.Driver)
	if err != nil {
		return "", "", err
	}
	if driver == DriverSQLite {
		if cfg.Path == "" {
			return "", "", fmt.Errorf("sqlite path is required")
		}
		return DriverSQLite, cfg.Path, nil
	}
	return DriverPostgres, fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name), nil
}

func isSQLiteFile(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Migrate 创建 analyses 表
func (s *Storage) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if s.driver == DriverSQLite {
		schema = sqliteSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveAnalysis 保存分析结果，返回自增 ID
func (s *Storage) SaveAnalysis(ctx context.Context, r *model.AnalysisResult) (int, error) {
	row, err := toRow(r)
	if err != nil {
		return 0, err
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var id int
	err = s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO analyses (keyword, markdown_report, structured_data, sources, search_queries, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		sanitize(r.Keyword), sanitize(r.MarkdownReport), row.data, row.sources, row.queries, r.Model, created.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save analysis: %w", err)
	}
	return id, nil
}

// LatestByKeyword 查找 since 之后同一关键词 (忽略大小写) 的最新结果
func (s *Storage) LatestByKeyword(ctx context.Context, keyword string, since time.Time) (*model.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+columns+` FROM analyses
		WHERE lower(keyword) = ? AND created_at >= ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`), strings.ToLower(strings.TrimSpace(keyword)), since.UTC())
	return scanAnalysis(row)
}

// GetAnalysis 按 ID 查询
func (s *Storage) GetAnalysis(ctx context.Context, id int) (*model.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+columns+` FROM analyses WHERE id = ?`), id)
	return scanAnalysis(row)
}

// ListAnalyses 分页列出历史记录，按时间倒序，page 从 1 开始
func (s *Storage) ListAnalyses(ctx context.Context, page, pageSize int) ([]*model.AnalysisSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+columns+` FROM analyses
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`), pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var summaries []*model.AnalysisSummary
	for rows.Next() {
		r, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, err
		}
		summary := &model.AnalysisSummary{
			ID:          r.ID,
			Keyword:     r.Keyword,
			SourceCount: len(r.Sources),
			CreatedAt:   r.CreatedAt,
		}
		if r.StructuredData != nil && len(r.StructuredData.TopCountries) > 0 {
			summary.TopCountry = r.StructuredData.TopCountries[0].Name
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// rebind 将 ? 占位符转换为 PostgreSQL 的 $n
func (s *Storage) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// sanitize 移除无效的 UTF-8 字符与 NULL 字节，PostgreSQL 文本字段不支持 NULL 字节
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
