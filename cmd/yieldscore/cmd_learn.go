package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/holdfast/yieldscore/internal/learner"
)

func newLearnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Run the quarterly weight-learning cycle",
		Long: `Evaluates last quarter's shadow-portfolio predictions against realized
returns and, when the signal is strong enough, publishes an adjusted
weight version. The active version is never modified in place.`,
		RunE: runLearn,
	}
	cmd.Flags().Bool("daemon", false, "Stay resident and run on the quarterly schedule")
	return cmd
}

func runLearn(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	daemon, _ := cmd.Flags().GetBool("daemon")
	if daemon {
		sched, err := learner.NewScheduler(a.learner, log.Logger)
		if err != nil {
			return err
		}
		sched.Start()
		log.Info().Str("schedule", learner.QuarterlySpec).Msg("learning scheduler running")

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		sched.Stop()
		return nil
	}

	report, err := a.learner.RunCycle(cmd.Context(), time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("window %s .. %s, %d realized samples, base %s\n",
		report.WindowFrom.Format("2006-01-02"), report.WindowTo.Format("2006-01-02"),
		report.TotalSamples, report.BaseVersion)
	for _, ce := range report.Classes {
		fmt.Printf("  %-18s n=%-4d hit=%.2f", ce.Class, ce.Samples, ce.HitRate)
		if ce.Adjusted {
			fmt.Printf("  adjusted -> %v", ce.NewWeights)
		}
		fmt.Println()
	}
	if report.Published != "" {
		fmt.Printf("published %s\n", report.Published)
	} else {
		fmt.Printf("nothing published: %s\n", report.SkippedPublish)
	}
	return nil
}
