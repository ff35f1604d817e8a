package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

var collectCmd = &cobra.Command{
	Use:   "collect [handler]",
	Short: "Collect data from the upstream sources",
	Long: `Fetches fresh observations and documents from the RBA and ABS
sources and stores them locally. With no argument every handler's
sources are collected; with a handler name only that handler's.

Examples:
  yarra collect
  yarra collect housing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	if collectService == nil {
		return errors.New("collection service not configured")
	}

	if len(args) == 1 {
		result, err := collectService.Collect(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("collection failed: %w", err)
		}
		printCollectionResult(cmd, result)
		return nil
	}

	results, err := collectService.CollectAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}
	for _, result := range results {
		printCollectionResult(cmd, result)
	}
	return nil
}

func printCollectionResult(cmd *cobra.Command, result domain.CollectionResult) {
	elapsed := result.CompletedAt.Sub(result.StartedAt).Round(1e7) // 10ms
	cmd.Printf("%-10s %-8s %d records in %s\n", result.Handler, result.Status, result.Records, elapsed)
	for _, msg := range result.Errors {
		cmd.Printf("           error: %s\n", msg)
	}
}
