package render

import (
	"html/template"
	"io"
	"time"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

// ReportData 报告模板数据
type ReportData struct {
	Keyword     string
	Date        string
	HasData     bool
	Bars        []Bar
	EmptyChart  string
	Action      string
	Competitors []string
	Body        template.HTML
	Sources     []Source
}

// NewReportData 由分析结果组装模板数据
func NewReportData(r *model.AnalysisResult) ReportData {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	data := ReportData{
		Keyword:    r.Keyword,
		Date:       created.Format("2006-01-02 15:04"),
		HasData:    r.StructuredData != nil,
		EmptyChart: EmptyChartText,
		Action:     Action(r.StructuredData),
		Body:       Markdown(r.MarkdownReport),
		Sources:    ValidSources(r.Sources),
	}
	if r.StructuredData != nil {
		data.Bars = ChartBars(r.StructuredData.TopCountries)
		data.Competitors = r.StructuredData.Competitors
	}
	return data
}

var reportTpl = template.Must(template.New("report").Parse(reportHTML))

// Report 输出独立的 HTML 报告页面
func Report(w io.Writer, r *model.AnalysisResult) error {
	return reportTpl.Execute(w, NewReportData(r))
}

const reportHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>出海罗盘 | {{.Keyword}}</title>
    <style>
        :root {
            --primary-color: #0d9488;
            --bg-color: #f8fafc;
            --card-bg: #ffffff;
            --text-main: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            background-color: var(--bg-color);
            color: var(--text-main);
            line-height: 1.6;
            margin: 0;
            padding: 20px;
        }
        .container { max-width: 960px; margin: 0 auto; }
        header { margin-bottom: 32px; }
        h1 { font-size: 2rem; margin: 0 0 6px 0; }
        .date-info { color: var(--text-secondary); font-size: 0.9rem; }
        .summary { display: grid; gap: 24px; grid-template-columns: 1fr; margin-bottom: 32px; }
        @media (min-width: 768px) { .summary { grid-template-columns: 2fr 1fr; } }
        .card {
            background: var(--card-bg);
            border-radius: 12px;
            padding: 24px;
            border: 1px solid var(--border-color);
            box-shadow: 0 2px 4px rgba(0,0,0,0.05);
        }
        .chart-title { font-size: 0.9rem; font-weight: 600; color: #475569; margin-bottom: 16px; }
        .bar-row { display: flex; align-items: center; margin-bottom: 10px; font-size: 0.85rem; }
        .bar-name { width: 110px; color: #475569; flex-shrink: 0; }
        .bar-track { flex: 1; background: #f1f5f9; border-radius: 4px; height: 18px; }
        .bar-fill { height: 18px; border-radius: 0 4px 4px 0; }
        .bar-value { width: 40px; text-align: right; color: var(--text-secondary); }
        .empty-chart { color: #9ca3af; font-size: 0.9rem; }
        .action-card { background: linear-gradient(135deg, #134e4a, #0f172a); color: #fff; border-radius: 12px; padding: 24px; }
        .action-label { color: #5eead4; font-size: 0.8rem; font-weight: 600; letter-spacing: 0.05em; margin-bottom: 10px; }
        .action-text { font-size: 1.1rem; font-weight: 500; }
        .competitors { margin-top: 20px; }
        .competitors span { display: inline-block; padding: 2px 8px; margin: 0 6px 6px 0; border-radius: 6px; background: rgba(255,255,255,0.1); border: 1px solid rgba(255,255,255,0.1); font-size: 0.8rem; }
        .report h2 { margin-top: 0; }
        .report a { color: var(--primary-color); }
        .sources { margin-top: 32px; }
        .sources h3 { font-size: 0.85rem; color: var(--text-secondary); text-transform: uppercase; letter-spacing: 0.05em; }
        .source-grid { display: grid; gap: 12px; grid-template-columns: repeat(auto-fill, minmax(260px, 1fr)); }
        .source-grid a { display: block; padding: 12px; background: #fff; border: 1px solid var(--border-color); border-radius: 8px; text-decoration: none; }
        .source-grid a:hover { border-color: #5eead4; }
        .source-title { color: #334155; font-size: 0.9rem; font-weight: 500; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
        .source-host { color: #94a3b8; font-size: 0.75rem; }
        .source-review { color: #64748b; font-size: 0.75rem; font-style: italic; margin-top: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>🧭 全球市场深度分析报告: {{.Keyword}}</h1>
            <div class="date-info">{{.Date}}</div>
        </header>

        {{if .HasData}}
        <div class="summary">
            <div class="card">
                <div class="chart-title">搜索热度 Top 5 国家/地区</div>
                {{range .Bars}}
                <div class="bar-row">
                    <div class="bar-name">{{.Name}}</div>
                    <div class="bar-track"><div class="bar-fill" style="width: {{printf "%.0f" .Percent}}%; background: {{.Color}};"></div></div>
                    <div class="bar-value">{{printf "%.0f" .Value}}</div>
                </div>
                {{else}}
                <div class="empty-chart">{{.EmptyChart}}</div>
                {{end}}
            </div>
            <div class="action-card">
                <div class="action-label">行动指南</div>
                <div class="action-text">{{.Action}}</div>
                {{if .Competitors}}
                <div class="competitors">
                    <div class="action-label">主要竞争对手</div>
                    {{range .Competitors}}<span>{{.}}</span>{{end}}
                </div>
                {{end}}
            </div>
        </div>
        {{end}}

        <div class="card report">
            {{.Body}}
        </div>

        {{if .Sources}}
        <div class="sources">
            <h3>数据来源 (Google Search Grounding)</h3>
            <div class="source-grid">
                {{range .Sources}}
                <a href="{{.URI}}" target="_blank" rel="noopener noreferrer">
                    <div class="source-title">{{.Title}}</div>
                    <div class="source-host">{{.Host}}</div>
                    {{range .Reviews}}<div class="source-review">“{{.}}”</div>{{end}}
                </a>
                {{end}}
            </div>
        </div>
        {{end}}
    </div>
</body>
</html>
`
