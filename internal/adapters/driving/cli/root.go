// Package cli provides the cobra command tree. Services are injected
// once at startup via SetServices; commands read the package-level
// handles and fail cleanly when a required service is absent.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/meridian-labs/yarra/internal/core/domain"
	"github.com/meridian-labs/yarra/internal/core/ports/driven"
	"github.com/meridian-labs/yarra/internal/core/ports/driving"
	"github.com/meridian-labs/yarra/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected services.
var (
	askService      driving.AskService
	collectService  driving.CollectionService
	handlerRegistry driving.HandlerRegistry
	queryGateway    driving.QueryGateway
	scheduler       driving.Scheduler
	metricStore     driven.MetricStore
	threadStore     driven.ThreadStore
	configStore     driven.ConfigStore
	llmService      driven.LLMService
	appSettings     domain.Settings
)

// Services bundles everything the command tree needs.
type Services struct {
	Ask       driving.AskService
	Collect   driving.CollectionService
	Registry  driving.HandlerRegistry
	Gateway   driving.QueryGateway
	Scheduler driving.Scheduler
	Metrics   driven.MetricStore
	Threads   driven.ThreadStore
	Config    driven.ConfigStore
	LLM       driven.LLMService
	Settings  domain.Settings
}

// SetServices injects the wired services. Call before Execute.
func SetServices(s Services) {
	askService = s.Ask
	collectService = s.Collect
	handlerRegistry = s.Registry
	queryGateway = s.Gateway
	scheduler = s.Scheduler
	metricStore = s.Metrics
	threadStore = s.Threads
	configStore = s.Config
	llmService = s.LLM
	appSettings = s.Settings
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "yarra",
	Short: "Ask questions of Australian economic data",
	Long: `Yarra answers natural-language questions about the Australian economy.

Questions are routed to specialised data handlers (housing market,
labour market) that query locally collected RBA and ABS statistics.
Answers always attribute each claim to the handler that produced it.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
