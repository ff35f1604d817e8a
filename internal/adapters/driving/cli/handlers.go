package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List the registered data handlers",
	Long: `Lists every registered data handler with the keywords the router
matches questions against. A question that matches none of these
keywords cannot be answered.`,
	RunE: runHandlers,
}

func init() {
	rootCmd.AddCommand(handlersCmd)
}

func runHandlers(cmd *cobra.Command, _ []string) error {
	if handlerRegistry == nil {
		return errors.New("handler registry not configured")
	}

	descriptors := handlerRegistry.All()
	if len(descriptors) == 0 {
		cmd.Println("No handlers registered.")
		return nil
	}

	cmd.Printf("Registered handlers (%d):\n\n", len(descriptors))
	for _, desc := range descriptors {
		cmd.Printf("  %s\n", desc.Name)
		if desc.Description != "" {
			cmd.Printf("    %s\n", desc.Description)
		}
		cmd.Printf("    keywords: %s\n\n", strings.Join(desc.Keywords, ", "))
	}
	return nil
}
