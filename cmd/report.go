package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/aqlanhadi/kwgn-sms/report"
	"github.com/spf13/cobra"
)

var (
	reportMonth   string
	reportGroupBy string
	reportJSON    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize stored transactions",
	Long: `Groups stored transactions by category, account or month and prints the
count and net total of each group. Credits count positive, debits negative.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := report.ValidateMonth(reportMonth); err != nil {
			return err
		}
		groupBy, err := report.ParseGroupBy(reportGroupBy)
		if err != nil {
			return err
		}

		ctx := context.Background()
		syncer, closeStore, err := openSyncer(ctx, appConfig)
		if err != nil {
			return err
		}
		defer closeStore()

		txs, err := syncer.Transactions(ctx)
		if err != nil {
			return err
		}
		accounts, err := syncer.Accounts(ctx)
		if err != nil {
			return err
		}
		categories, err := syncer.Categories(ctx)
		if err != nil {
			return err
		}
		if len(categories) == 0 {
			categories = appConfig.Categories
		}

		filtered := report.FilterByMonth(txs, reportMonth)
		groups := report.Summarize(filtered, groupBy, accounts, categories)
		if reportJSON {
			for i := range groups {
				groups[i].Transactions = nil
			}
			return printJSON(cmd, groups)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(w, "%s\tCOUNT\tTOTAL\t\n", groupBy)
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t%d\t%s\t\n", g.Key, g.Count, g.Total.StringFixed(2))
		}
		fmt.Fprintf(w, "all\t%d\t%s\t\n", len(filtered), report.Total(filtered).StringFixed(2))
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportMonth, "month", "", "Only include transactions of this month (YYYY-MM)")
	reportCmd.Flags().StringVar(&reportGroupBy, "group-by", "category", "Group by category, account or month")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print groups as JSON")
}
