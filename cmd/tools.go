package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iris-assistant/iris/internal/dependency"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the loaded tools",
	RunE:  runTools,
}

func runTools(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}

	registry := container.Registry()
	fmt.Printf("%s %d tools loaded", logo, registry.Len())
	if n := container.Plugins().LoadErrors(); n > 0 {
		fmt.Printf(" (%d load errors, see log)", n)
	}
	fmt.Println()

	for _, t := range registry.All() {
		fmt.Printf("  %-26s %s\n", t.Name(), t.Description())
	}
	return nil
}
