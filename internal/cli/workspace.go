package cli

import (
	"fmt"
	"os"

	"kanba/internal/config"
)

// IsInitialized checks if kanba is initialized in the current directory.
func IsInitialized() bool {
	info, err := os.Stat(config.Dir)
	return err == nil && info.IsDir()
}

// requireInitialized fails with a helpful message when the workspace is
// missing.
func requireInitialized() error {
	if !IsInitialized() {
		return fmt.Errorf("kanba is not initialized in this directory (run: kanba init)")
	}
	return nil
}
