package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meridian-labs/yarra/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the AI provider, query policy and scheduler.

Settings are stored in ~/.yarra/config.toml and take effect on the
next command.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider [name]",
	Short: "Set the AI provider",
	Long: `Set the AI provider used for answer composition and topic
generation.

Available providers:
  ollama     - Local Ollama instance (no API key)
  openai     - OpenAI cloud API
  anthropic  - Anthropic cloud API

Cloud providers prompt for an API key.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsProvider,
}

var settingsModelCmd = &cobra.Command{
	Use:   "model [name]",
	Short: "Set the AI model name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsModel,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsModelCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[AI]")
	provider := configStore.GetString("ai.provider")
	if provider == "" {
		cmd.Println("  Provider: (not set, deterministic composition)")
	} else {
		cmd.Printf("  Provider: %s\n", domain.AIProvider(provider).Description())
		if model := configStore.GetString("ai.model"); model != "" {
			cmd.Printf("  Model: %s\n", model)
		}
		if domain.AIProvider(provider).RequiresAPIKey() {
			if key := configStore.GetString("ai.api_key"); key != "" {
				cmd.Printf("  API Key: %s\n", maskAPIKey(key))
			} else {
				cmd.Printf("  API Key: (not set)\n")
			}
		}
	}
	cmd.Println()

	cmd.Println("[Routing]")
	cmd.Printf("  Relevance threshold: %.2f\n", appSettings.RelevanceThreshold)
	cmd.Printf("  Per-call timeout: %s\n", appSettings.PerCallTimeout)
	if appSettings.MaxConcurrency > 0 {
		cmd.Printf("  Max concurrency: %d\n", appSettings.MaxConcurrency)
	} else {
		cmd.Printf("  Max concurrency: unbounded\n")
	}
	cmd.Println()

	cmd.Println("[Query]")
	cmd.Printf("  Row cap: %d\n", appSettings.Query.MaxRows)
	cmd.Printf("  Timeout: %s\n", appSettings.Query.Timeout)
	cmd.Println()

	cmd.Println("[Scheduler]")
	if appSettings.Scheduler.Enabled {
		task := appSettings.Scheduler.GetTaskConfig(domain.TaskIDCollection)
		cmd.Printf("  Enabled: yes (collection every %s)\n", task.Interval)
	} else {
		cmd.Printf("  Enabled: no\n")
	}

	if err := appSettings.Validate(); err != nil {
		cmd.Printf("\nWarning: %v\n", err)
	}
	return nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q (ollama, openai or anthropic)", args[0])
	}

	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		key := readPassword()
		cmd.Println()
		if key == "" {
			return errors.New("API key is required for this provider")
		}
		if err := configStore.Set("ai.api_key", key); err != nil {
			return fmt.Errorf("failed to save API key: %w", err)
		}
	}

	if err := configStore.Set("ai.provider", provider.String()); err != nil {
		return fmt.Errorf("failed to save provider: %w", err)
	}

	cmd.Printf("AI provider set to: %s\n", provider.Description())
	return nil
}

func runSettingsModel(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if err := configStore.Set("ai.model", args[0]); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	cmd.Printf("AI model set to: %s\n", args[0])
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
