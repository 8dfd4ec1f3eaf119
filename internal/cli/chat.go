package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kanba/internal/config"
	"kanba/internal/engine"
	"kanba/internal/router"
	"kanba/internal/session"
	"kanba/internal/store"
	"kanba/internal/tui"
	"kanba/internal/util"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a project scoping session",
	Long:  "Opens a chat session that refines your project idea into a kanban plan. Save the plan to end the session.",
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := requireInitialized(); err != nil {
		return err
	}

	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	key, err := config.APIKey()
	if err != nil {
		return err
	}

	eng, err := engine.NewGemini(cmd.Context(), key, cfg.Model)
	if err != nil {
		return err
	}

	id, err := util.GenerateShortID()
	if err != nil {
		return fmt.Errorf("failed to generate session id: %w", err)
	}

	records := store.New(cfg.PlansDir)
	r := router.New(eng, records, session.NewState(id))
	return tui.Run(r)
}
