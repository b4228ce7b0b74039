package cmd

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bnema/wayoutd/internal/app"
	"github.com/bnema/wayoutd/internal/logger"
)

// runDaemon is rootCmd's RunE: it builds the App from the bound CLI
// flags and drives it to completion, optionally watching the config
// file for changes when --watch is set.
func runDaemon(c *cobra.Command, args []string) error {
	a, err := app.New(app.Options{
		ConfigPath: cfgPath,
		Oneshot:    oneshot,
		SocketPath: socketPath,
		SkipTests:  skipTests,
		TimeoutMs:  timeoutMs,
		Watch:      watchConfig,
	})
	if err != nil {
		return err
	}

	if watchConfig {
		startConfigWatcher(a)
	}

	code := a.Run()
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// startConfigWatcher wires an fsnotify watcher on the resolved config
// file's directory (fsnotify watches directories more reliably than
// single files across editor rename-on-save patterns) and triggers a
// reload whenever the config file itself is written or recreated.
func startConfigWatcher(a *app.App) {
	path := a.ConfigPath()
	if path == "" {
		logger.Warnf("watch: no resolved config file path, skipping")
		return
	}
	dir := filepath.Dir(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("watch: create watcher: %v", err)
		return
	}
	if err := watcher.Add(dir); err != nil {
		logger.Warnf("watch: add %s: %v", dir, err)
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				logger.Infof("watch: %s changed, reloading", path)
				if err := a.ReloadConfig(""); err != nil {
					logger.Warnf("watch: reload failed: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("watch: %v", err)
			}
		}
	}()
}
