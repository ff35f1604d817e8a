package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question",
	Long: `Routes a natural-language question to the relevant data handlers,
queries their data concurrently and prints one attributed answer.

Examples:
  yarra ask "what is the current cash rate?"
  yarra ask "how is housing affordability for first home buyers?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	answer, err := askService.AnswerQuestion(cmd.Context(), args[0], nil)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswerText(cmd, answer)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.SynthesizedAnswer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer domain.SynthesizedAnswer) {
	cmd.Println(answer.Text)

	if answer.Status == domain.AnswerPartial {
		cmd.Println("\nNote: some data handlers could not contribute; the answer may be incomplete.")
	}

	if len(answer.Attributions) > 0 {
		cmd.Println("\nSources:")
		for _, attr := range answer.Attributions {
			cmd.Printf("  [%s]\n", attr.HandlerName)
			for _, cit := range attr.Citations {
				line := "    - " + cit.Source
				if cit.AsOf != nil {
					line += " (as of " + cit.AsOf.Format("2006-01-02") + ")"
				}
				cmd.Println(line)
				if cit.URL != "" {
					cmd.Printf("      %s\n", cit.URL)
				}
			}
		}
	}
}
