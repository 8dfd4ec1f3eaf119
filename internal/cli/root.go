// Package cli defines the kanba command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "kanba",
	Short:   "Conversational project scoping for kanban boards",
	Long:    `Kanba turns a rough project idea into a structured kanban plan through a chat session, then saves it as JSON for whatever board you use.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(plansCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
