package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/meridian-labs/yarra/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Launch the interactive chat interface. Questions are routed to the
registered domain handlers and answers carry source attribution.

Controls:
  Enter    - Ask the typed question
  Ctrl+N   - Start a new conversation thread
  PgUp/Dn  - Scroll the transcript
  Esc      - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}
	if threadStore == nil {
		return errors.New("thread store not configured")
	}

	// Panic recovery so terminal state and a stack trace survive a crash.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	// The chat session is long-running, so background collection runs
	// here when the scheduler is enabled.
	if appSettings.Scheduler.Enabled && scheduler != nil {
		schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
		defer schedulerCancel()

		go func() {
			if err := scheduler.Start(schedulerCtx); err != nil {
				fmt.Fprintf(os.Stderr, "scheduler stopped: %v\n", err)
			}
		}()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "scheduler shutdown: %v\n", err)
			}
		}()
	}

	app, err := tui.NewApp(tui.NewPorts(askService, threadStore))
	if err != nil {
		return fmt.Errorf("failed to create chat interface: %w", err)
	}
	app = app.WithContext(cmd.Context())

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}
