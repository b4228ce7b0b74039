package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch NAME",
	Short: "Force the daemon to restrict matching to the named profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.SwitchProfile(args[0]); err != nil {
			return fmt.Errorf("switch %s: %w", args[0], err)
		}
		fmt.Printf("switched to profile %q\n", args[0])
		return nil
	},
}
