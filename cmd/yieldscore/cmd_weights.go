package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/holdfast/yieldscore/internal/domain"
	"github.com/holdfast/yieldscore/internal/weights"
)

func newWeightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Show the active weight snapshot",
		RunE:  runWeights,
	}
	cmd.Flags().String("version", "", "Show a specific version instead of the current one")
	return cmd
}

func runWeights(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	version, _ := cmd.Flags().GetString("version")
	var snap *weights.Snapshot
	if version != "" {
		snap, err = a.weights.Load(cmd.Context(), version)
	} else {
		snap, err = a.accessor.Snapshot(cmd.Context())
	}
	if err != nil {
		return err
	}

	fmt.Printf("version %s\n", snap.Version)
	classes := make([]domain.AssetClass, 0, len(snap.Sets))
	for c := range snap.Sets {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	for _, class := range classes {
		set := snap.Sets[class]
		fmt.Printf("  %-18s", class)
		for _, comp := range weights.Components() {
			fmt.Printf("  %s=%.2f", comp, set.Weights[comp])
		}
		fmt.Printf("  (sum %.3f)\n", set.Sum())
	}
	return nil
}
