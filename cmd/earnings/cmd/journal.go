package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/earnings/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded backtest runs",
	Long: `Query and display journal records from a SQLite database.

Subcommands:
  run    - Summary of a recorded run
  trades - List every trade of a run, in exit order
  days   - Daily balance and drawdown of a run

Examples:
  earnings journal run <run-id>
  earnings journal trades <run-id>
  earnings journal days <run-id>`,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Summary of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List every trade of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalDaysCmd = &cobra.Command{
	Use:   "days <run-id>",
	Short: "Daily balance and drawdown of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDays,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalDaysCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./earnings.sqlite", "path to SQLite journal DB")
}

func openQueryJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.Run(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Run      %s (%s)\n", rec.RunID, rec.Name)
	fmt.Printf("Window   %s to %s\n", rec.Start.Format("2006-01-02"), rec.End.Format("2006-01-02"))
	fmt.Printf("Balance  $%.2f -> $%.2f net ($%.2f gross)\n", rec.StartBalance, rec.NetBalance, rec.GrossBalance)
	fmt.Printf("Trades   %d\n", rec.Trades)
	fmt.Printf("Max DD   %.2f%%\n", rec.MaxDrawdown)
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.TradesByRun(args[0])
	if err != nil {
		return err
	}

	for _, r := range recs {
		fmt.Printf("%4d %-6s %-5s %6d @ %8.2f -> %8.2f  %s  pl %9.2f  comm %6.2f  %s\n",
			r.TradeID, r.Ticker, r.Direction, r.Volume,
			r.EntryPrice, r.ExitPrice, r.ExitDate.Format("2006-01-02"),
			r.RealizedPL, r.Commission, r.Reason)
	}
	fmt.Printf("%d trades\n", len(recs))
	return nil
}

func runJournalDays(cmd *cobra.Command, args []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.DaysByRun(args[0])
	if err != nil {
		return err
	}

	for _, r := range recs {
		fmt.Printf("%s  $%12.2f  dd %6.2f%%  longs %2d  shorts %2d\n",
			r.Date.Format("2006-01-02"), r.Balance, r.Drawdown, r.OpenLongs, r.OpenShorts)
	}
	return nil
}
