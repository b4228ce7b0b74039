package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:   "reload [PATH]",
	Short: "Reload the daemon's configuration from disk",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.ReloadConfig(path); err != nil {
			return fmt.Errorf("reload config: %w", err)
		}
		fmt.Println("config reloaded")
		return nil
	},
}
