package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/trade_compass/app/compass/pkg/render"
)

// newBuyersCmd 检索一个或多个地区的潜在买家
func newBuyersCmd(configPath *string) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "buyers <keyword> <region> [region...]",
		Short: "Find wholesale distributors or importers in the given regions",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuyers(cmd, *configPath, args[0], args[1:], jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the leads as JSON")
	return cmd
}

func runBuyers(cmd *cobra.Command, configPath, keyword string, regions []string, jsonOutput bool) error {
	cfg, store, err := setup(configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	eng, err := newEngine(cfg, store)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	leads, err := eng.FindBuyersInRegions(ctx, keyword, regions)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, leads)
	}
	for _, l := range leads {
		fmt.Fprintf(out, "== %s @ %s ==\n%s\n", l.Keyword, l.Region, l.Text)
		for i, s := range render.ValidSources(l.Sources) {
			fmt.Fprintf(out, "%2d. %s (%s)\n", i+1, s.Title, s.URI)
			for _, r := range s.Reviews {
				fmt.Fprintf(out, "    “%s”\n", r)
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}
