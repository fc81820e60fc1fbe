package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// maxPrintedSources matches the number of sources the dashboard lists.
const maxPrintedSources = 3

func newAnalyzeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <market>",
		Short: "Run one market analysis and print the summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			insight, err := a.core.RequestInsight(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n\n%s\n", insight.Market, insight.Summary)
			if len(insight.Sources) == 0 {
				return nil
			}
			fmt.Fprintf(out, "\nSources (%d):\n", len(insight.Sources))
			for i, source := range insight.Sources {
				if i == maxPrintedSources {
					break
				}
				fmt.Fprintf(out, "  - %s <%s>\n", source.Title, source.URI)
			}
			return nil
		},
	}
}

func newDetailCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "detail <ticker>",
		Short: "Print a deep-dive analysis for one ETF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			detail, err := a.core.RequestTickerDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), detail)
			return nil
		},
	}
}

func newMarketsCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "markets",
		Short: "List the market overview cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, *configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			markets, err := a.core.ListMarkets()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "REGION\tINDEX\tPRICE\tCHANGE\tSTATUS")
			for _, m := range markets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s (%s%%)\t%s\n",
					m.Region, m.IndexName, m.Price.StringFixed(2), m.Change.Signed(2), m.ChangePercent.StringFixed(2), m.Status)
			}
			return tw.Flush()
		},
	}
}
