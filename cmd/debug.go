package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Diagnostic subcommands for inspecting the running daemon",
}

var debugCurrentStateCmd = &cobra.Command{
	Use:   "current-state",
	Short: "Print the Daemon State Machine's current state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		state, err := client.CurrentState()
		if err != nil {
			return fmt.Errorf("fetch current state: %w", err)
		}
		fmt.Println(state)
		return nil
	},
}

var debugListReportsCmd = &cobra.Command{
	Use:   "list-reports",
	Short: "Print the matching pipeline's diagnostic reports for every profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		reports, err := client.MatchReports()
		if err != nil {
			return fmt.Errorf("fetch match reports: %w", err)
		}
		for _, r := range reports {
			fmt.Printf("profile %q: %d variant(s), %d residue entr(y/ies)\n",
				r.ProfileName, len(r.Variants), len(r.Residue))
			for _, v := range r.Variants {
				fmt.Printf("  variant %d:\n", v.VariantIndex)
				for _, p := range v.Pairings {
					fmt.Printf("    %s -> %s (mode %d, specificity %d)\n",
						p.OutputSearch, p.HeadName, p.ModeID, p.Specificity)
				}
			}
			for _, residue := range r.Residue {
				fmt.Printf("  residue: %s\n", residue)
			}
		}
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugCurrentStateCmd)
	debugCmd.AddCommand(debugListReportsCmd)
}
