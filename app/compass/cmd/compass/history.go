package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/model"
	"github.com/iWorld-y/trade_compass/app/compass/pkg/render"
)

type historyOptions struct {
	page       int
	pageSize   int
	outPath    string
	jsonOutput bool
}

// historyPage history --json 的列表输出
type historyPage struct {
	Total int                      `json:"total"`
	Items []*model.AnalysisSummary `json:"items"`
}

// newHistoryCmd 查看已保存的分析记录，传入 ID 时重新渲染该报告
func newHistoryCmd(configPath *string) *cobra.Command {
	opts := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List stored analyses, or re-render one by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, *configPath, args, opts)
		},
	}
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 10, "Items per page")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Write the selected report as HTML")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print as JSON")
	return cmd
}

func runHistory(cmd *cobra.Command, configPath string, args []string, opts *historyOptions) error {
	_, store, err := setup(configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("未配置数据库 (db.driver)，没有历史记录")
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		result, err := store.GetAnalysis(ctx, id)
		if err != nil {
			return err
		}
		if opts.outPath != "" {
			if err := writeReport(opts.outPath, result); err != nil {
				return err
			}
		}
		if opts.jsonOutput {
			return writeJSON(out, result)
		}
		text, err := render.Terminal(result, 100)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
		return nil
	}

	items, total, err := store.ListAnalyses(ctx, opts.page, opts.pageSize)
	if err != nil {
		return err
	}
	if opts.jsonOutput {
		if items == nil {
			items = []*model.AnalysisSummary{}
		}
		return writeJSON(out, historyPage{Total: total, Items: items})
	}
	fmt.Fprintf(out, "共 %d 条记录\n", total)
	for _, it := range items {
		fmt.Fprintf(out, "#%-4d %s  %-24s 热门: %-12s 来源: %d\n",
			it.ID, it.CreatedAt.Local().Format("2006-01-02 15:04"), it.Keyword, it.TopCountry, it.SourceCount)
	}
	return nil
}
