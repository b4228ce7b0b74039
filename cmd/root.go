// Package cmd implements the daemon entry point and client command tree:
// a cobra root command wiring the daemon's own flags plus subcommands
// registered via init().
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time via -ldflags.
	Version = "0.1.0-dev"

	cfgPath     string
	oneshot     bool
	socketPath  string
	skipTests   bool
	timeoutMs   int
	watchConfig bool

	rootCmd = &cobra.Command{
		Use:   "wayoutd",
		Short: "Declarative display-configuration daemon for wlr-output-management-v1",
		Long: `wayoutd watches the live set of physical outputs and their supported modes,
selects the best declarative profile whose constraints match the current hardware, and
atomically applies a corresponding display configuration.`,
		SilenceUsage: true,
		RunE:         runDaemon,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.Flags().StringVar(&cfgPath, "config", "", "path to the TOML config file")
	rootCmd.Flags().BoolVar(&oneshot, "oneshot", false, "apply the best matching profile once and exit")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "path to the control socket")
	rootCmd.Flags().BoolVar(&skipTests, "skip-tests", false, "apply variants without a prior test")
	rootCmd.PersistentFlags().IntVar(&timeoutMs, "timeout", 0, "settle-delay / client timeout override in ms")
	rootCmd.Flags().BoolVar(&watchConfig, "watch", false, "reload when the config file changes on disk")

	viper.BindPFlag("settings.socket", rootCmd.PersistentFlags().Lookup("socket"))

	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(debugCmd)
}
