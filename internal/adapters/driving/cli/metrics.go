package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show the locally stored metrics",
	Long: `Lists every metric in the local store with its observation count,
the period range covered and the most recent value. Run "yarra collect"
first to populate the store.`,
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	if metricStore == nil {
		return errors.New("metric store not configured")
	}

	summaries, err := metricStore.Summaries(cmd.Context())
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		cmd.Println("No metrics stored yet. Run 'yarra collect' to fetch data.")
		return nil
	}

	cmd.Printf("%-50s %6s  %-18s %12s\n", "METRIC", "COUNT", "RANGE", "LATEST")
	for _, s := range summaries {
		rng := s.EarliestPeriod + ".." + s.LatestPeriod
		cmd.Printf("%-50s %6d  %-18s %9.2f %s\n", s.Metric, s.Count, rng, s.LatestValue, s.Unit)
	}
	return nil
}
