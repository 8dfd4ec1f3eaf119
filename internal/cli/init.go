package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kanba/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kanba in the current directory",
	Long:  "Creates a .kanba/ folder to store configuration and saved plans.",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if IsInitialized() {
		return fmt.Errorf("kanba is already initialized in this directory")
	}

	dirs := []string{
		config.Dir,
		filepath.Join(config.Dir, "plans"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	fmt.Println("Initialized kanba in", config.Dir)
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Export %s with your Gemini API key\n", config.APIKeyEnv)
	fmt.Println("  2. Run: kanba chat")
	return nil
}
