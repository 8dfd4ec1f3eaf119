package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kanba/internal/config"
	"kanba/internal/store"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Manage saved plans",
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved plans",
	RunE:  runPlansList,
}

var plansShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved plan as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansShow,
}

var plansDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansDelete,
}

func init() {
	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansShowCmd)
	plansCmd.AddCommand(plansDeleteCmd)
}

func openStore() (*store.Store, error) {
	if err := requireInitialized(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	return store.New(cfg.PlansDir), nil
}

func runPlansList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	names, err := s.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No saved plans. Run: kanba chat")
		return nil
	}

	for _, name := range names {
		p, err := s.Get(name)
		if err != nil {
			fmt.Printf("%s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("%s  %s\n", name, p.Summary())
	}
	return nil
}

func runPlansShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	p, err := s.Get(args[0])
	if err != nil {
		return err
	}
	doc, err := p.Document()
	if err != nil {
		return err
	}
	fmt.Println(string(doc))
	return nil
}

func runPlansDelete(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	if err := s.Delete(args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted", args[0])
	return nil
}
