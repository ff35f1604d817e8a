package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

var (
	queryLimit int
	queryJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run a read-only SQL query over the collected data",
	Long: `Runs a single SELECT statement against the local database through
the safe query gateway. Anything other than one plain SELECT is
rejected before it reaches the database, and results are capped at the
configured row limit.

Examples:
  yarra query "SELECT metric, period, value FROM observations WHERE metric = 'interest_rate_cash' ORDER BY period DESC"
  yarra query --limit 12 "SELECT period, value FROM observations WHERE metric = 'unemployment_rate'"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "row limit (0 = gateway default)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output rows as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryGateway == nil {
		return errors.New("query gateway not configured")
	}

	resp, err := queryGateway.Execute(cmd.Context(), domain.QueryRequest{
		SQL:      args[0],
		Handler:  "cli",
		RowLimit: queryLimit,
	})
	if err != nil {
		var rejected *domain.QueryRejectedError
		if errors.As(err, &rejected) {
			return fmt.Errorf("query rejected: %s", rejected.Reason)
		}
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, resp)
	}
	outputQueryTable(cmd, resp)
	return nil
}

func outputQueryJSON(cmd *cobra.Command, resp domain.QueryResponse) error {
	data, err := json.MarshalIndent(resp.Rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryTable(cmd *cobra.Command, resp domain.QueryResponse) {
	if resp.RowCount == 0 {
		cmd.Println("No rows.")
		return
	}

	cmd.Println(strings.Join(resp.Columns, " | "))
	for _, row := range resp.Rows {
		cells := make([]string, len(resp.Columns))
		for i, col := range resp.Columns {
			cells[i] = fmt.Sprintf("%v", row[col])
		}
		cmd.Println(strings.Join(cells, " | "))
	}

	cmd.Printf("\n%d row(s)", resp.RowCount)
	if resp.Truncated {
		cmd.Print(" (truncated)")
	}
	cmd.Println()
}
