package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holdfast/yieldscore/internal/scoring"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [TICKER...]",
		Short: "Score many securities under one weight version",
		Long: `Scores every ticker given as an argument, or read one-per-line from
stdin when no arguments are given. A failing ticker never aborts the batch;
its error is reported alongside the successful records.`,
		RunE: runBatch,
	}
	cmd.Flags().Int("workers", 0, "Concurrent scoring workers (0 = default)")
	cmd.Flags().Bool("fresh-sim", false, "Bypass the 30-day erosion cache")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	tickers := make([]string, 0, len(args))
	for _, a := range args {
		tickers = append(tickers, strings.ToUpper(a))
	}
	if len(tickers) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if t := strings.ToUpper(strings.TrimSpace(scanner.Text())); t != "" {
				tickers = append(tickers, t)
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers given")
	}

	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	workers, _ := cmd.Flags().GetInt("workers")
	fresh, _ := cmd.Flags().GetBool("fresh-sim")

	res, err := a.pipeline.ScoreBatch(cmd.Context(), tickers, workers, scoring.Options{
		ForceFreshSimulation: fresh,
	})
	if err != nil {
		return err
	}

	for _, item := range res.Items {
		switch {
		case item.Err != nil:
			fmt.Printf("%-8s ERROR  %v\n", item.Ticker, item.Err)
		case !item.Record.Gate.Passed:
			fmt.Printf("%-8s GATE   %s\n", item.Ticker, strings.Join(item.Record.Gate.Failures, "; "))
		case item.Record.Veto.Triggered:
			fmt.Printf("%-8s VETO   %s\n", item.Ticker, item.Record.Veto.Reason)
		default:
			fmt.Printf("%-8s %6.1f (%s)\n", item.Ticker, item.Record.Score, item.Record.Class)
		}
	}
	fmt.Printf("\n%d scored, %d gate-rejected, %d vetoed, %d failed under weights %s\n",
		res.Scored, res.Rejected, res.Vetoed, res.Failed, res.WeightVersion)
	return nil
}
