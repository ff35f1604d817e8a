package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var threadsLimit int

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List recent conversation threads",
	RunE:  runThreads,
}

func init() {
	threadsCmd.Flags().IntVarP(&threadsLimit, "limit", "n", 20, "maximum number of threads")
	rootCmd.AddCommand(threadsCmd)
}

func runThreads(cmd *cobra.Command, _ []string) error {
	if threadStore == nil {
		return errors.New("thread store not configured")
	}

	threads, err := threadStore.ListThreads(cmd.Context(), threadsLimit)
	if err != nil {
		return err
	}
	if len(threads) == 0 {
		cmd.Println("No conversation threads yet. Start one with 'yarra chat'.")
		return nil
	}

	for _, thread := range threads {
		topic := thread.Topic
		if topic == "" {
			topic = "(no topic)"
		}
		cmd.Printf("%s  %s  %s\n", thread.ID, thread.UpdatedAt.Format("2006-01-02 15:04"), topic)
	}
	return nil
}
