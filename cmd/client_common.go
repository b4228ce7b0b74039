package cmd

import (
	"fmt"
	"time"

	"github.com/bnema/wayoutd/internal/ipc"
)

// newClient resolves the control socket path (the --socket flag, or
// the default $XDG_RUNTIME_DIR/wayout-$WAYLAND_DISPLAY.socket) and
// returns a Client bound to it and the --timeout override.
func newClient() (*ipc.Client, error) {
	path := socketPath
	if path == "" {
		resolved, err := ipc.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("resolve control socket: %w", err)
		}
		path = resolved
	}
	return ipc.NewClient(path, time.Duration(timeoutMs)*time.Millisecond), nil
}
