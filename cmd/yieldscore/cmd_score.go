package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/scoring"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score TICKER",
		Short: "Score a single income security",
		Args:  cobra.ExactArgs(1),
		RunE:  runScore,
	}
	cmd.Flags().Bool("fresh-sim", false, "Bypass the 30-day erosion cache")
	cmd.Flags().Int64("seed", 0, "Pin the simulation RNG seed (0 = clock)")
	cmd.Flags().Bool("json", false, "Emit the full record as JSON")
	cmd.Flags().Bool("dry-run", false, "Compute without appending to history")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	fresh, _ := cmd.Flags().GetBool("fresh-sim")
	seed, _ := cmd.Flags().GetInt64("seed")
	asJSON, _ := cmd.Flags().GetBool("json")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	rec, err := a.pipeline.Score(cmd.Context(), strings.ToUpper(args[0]), scoring.Options{
		ForceFreshSimulation: fresh,
		Seed:                 seed,
		SkipPersist:          dryRun,
	})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	printRecord(rec)
	return nil
}

func printRecord(rec *domain.ScoreRecord) {
	fmt.Printf("%s (%s)  score %.1f\n", rec.Ticker, rec.Class, rec.Score)
	fmt.Printf("  gate: %s", rec.Gate.Gate)
	if rec.Gate.Passed {
		fmt.Println("  PASSED")
	} else {
		fmt.Println("  REJECTED")
		for _, f := range rec.Gate.Failures {
			fmt.Printf("    - %s\n", f)
		}
		return
	}
	if rec.Erosion != nil {
		fmt.Printf("  erosion: %.1f%% at %d months (%s, %.0f penalty pts, seed %d)\n",
			rec.Erosion.Probability*100, rec.Erosion.HorizonMonths,
			rec.Erosion.Tier, rec.Erosion.PenaltyPoints, rec.Erosion.Seed)
	}
	if c := rec.Composite; c != nil {
		fmt.Printf("  sub-scores: income %.1f  durability %.1f  valuation %.1f  technical %.1f (weights %s)\n",
			c.SubScores.Income, c.SubScores.Durability, c.SubScores.Valuation, c.SubScores.Technical,
			c.WeightVersion)
		fmt.Printf("  composite: %.1f raw, %.1f after %.1f penalty\n", c.PrePenalty, c.PostPenalty, c.TotalPenalty)
		for _, f := range c.Flags {
			fmt.Printf("    flag %-24s -%.1f  %s\n", f.Name, f.Penalty, f.Detail)
		}
	}
	if rec.Veto.Triggered {
		fmt.Printf("  VETO: %s\n", rec.Veto.Reason)
	}
	fmt.Printf("  tax: qualified %.0f%%, ROC %.0f%%, K-1 %v, prefer %s\n",
		rec.Tax.QualifiedDividendPct*100, rec.Tax.ReturnOfCapitalPct*100,
		rec.Tax.IssuesK1, rec.Tax.PreferredAccount)
	fmt.Printf("  confidence %.2f  schema %s  id %s\n", rec.Confidence, rec.SchemaVersion, rec.ID)
}
