package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
)

const barWidth = 30

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0d9488"))
	labelStyle  = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("#475569"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	actionStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#14b8a6")).Padding(0, 1)
)

// Terminal 终端输出：柱状图、行动建议、Markdown 正文与来源
func Terminal(r *model.AnalysisResult, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("全球市场深度分析报告: "+r.Keyword) + "\n\n")

	if r.StructuredData != nil {
		sb.WriteString(TerminalChart(r.StructuredData.TopCountries) + "\n\n")
		action := "行动指南: " + Action(r.StructuredData)
		if len(r.StructuredData.Competitors) > 0 {
			action += "\n主要竞争对手: " + strings.Join(r.StructuredData.Competitors, ", ")
		}
		sb.WriteString(actionStyle.Width(width-4).Render(action) + "\n")
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("init markdown renderer: %w", err)
	}
	body, err := renderer.Render(r.MarkdownReport)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	sb.WriteString(body)

	if sources := ValidSources(r.Sources); len(sources) > 0 {
		sb.WriteString(titleStyle.Render("数据来源") + "\n")
		for i, s := range sources {
			fmt.Fprintf(&sb, "%2d. %s %s\n", i+1, s.Title, mutedStyle.Render("("+s.Host+")"))
		}
	}
	return sb.String(), nil
}

// TerminalChart 用方块字符绘制横向柱状图
func TerminalChart(points []model.ChartDataPoint) string {
	bars := ChartBars(points)
	if len(bars) == 0 {
		return mutedStyle.Render(EmptyChartText)
	}

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		n := int(b.Percent / 100 * barWidth)
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color)).Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%s %s %.0f", labelStyle.Render(b.Name), bar, b.Value))
	}
	return strings.Join(lines, "\n")
}
