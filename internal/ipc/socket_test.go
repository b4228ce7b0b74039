package ipc

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	heads    []HeadView
	reloaded string
	switched string
}

func (s *stubHandler) CurrentHeads() ([]HeadView, error) { return s.heads, nil }
func (s *stubHandler) CurrentState() (string, error) { return "NoVariantApplied", nil }
func (s *stubHandler) MatchReports() ([]ReportView, error) {
	return []ReportView{{ProfileName: "laptop"}}, nil
}
func (s *stubHandler) ReloadConfig(path string) error {
	s.reloaded = path
	return nil
}
func (s *stubHandler) SwitchProfile(name string) error {
	s.switched = name
	return nil
}

func startTestServer(t *testing.T, h Handler) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wayout-test.socket")
	srv, err := Listen(path, h)
	require.NoError(t, err)
	go srv.Serve()
	t.Cleanup(func() { _ = srv.Close() })
	return srv, path
}

func TestClientServerCurrentHeads(t *testing.T) {
	h := &stubHandler{heads: []HeadView{{ID: 1, Name: "eDP-1"}}}
	_, path := startTestServer(t, h)

	client := NewClient(path, time.Second)
	heads, err := client.CurrentHeads()
	require.NoError(t, err)
	require.Len(t, heads, 1)
	require.Equal(t, "eDP-1", heads[0].Name)
}

func TestClientServerSwitchProfile(t *testing.T) {
	h := &stubHandler{}
	_, path := startTestServer(t, h)

	client := NewClient(path, time.Second)
	require.NoError(t, client.SwitchProfile("night"))
	require.Equal(t, "night", h.switched)
}

func TestClientServerReloadConfig(t *testing.T) {
	h := &stubHandler{}
	_, path := startTestServer(t, h)

	client := NewClient(path, time.Second)
	require.NoError(t, client.ReloadConfig("/tmp/wayout.toml"))
	require.Equal(t, "/tmp/wayout.toml", h.reloaded)
}

func TestClientServerMatchReports(t *testing.T) {
	h := &stubHandler{}
	_, path := startTestServer(t, h)

	client := NewClient(path, time.Second)
	reports, err := client.MatchReports()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, "laptop", reports[0].ProfileName)
}

func TestClientServerUnknownRequestKind(t *testing.T) {
	h := &stubHandler{}
	_, path := startTestServer(t, h)

	client := NewClient(path, time.Second)
	resp, err := client.Do(Request{Kind: "bogus"})
	require.NoError(t, err)
	require.Equal(t, RespError, resp.Kind)
}

func TestSocketPathRequiresEnv(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	_, err := SocketPath()
	require.Error(t, err)

	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	path, err := SocketPath()
	require.NoError(t, err)
	require.Equal(t, "/run/user/1000/wayout-wayland-0.socket", path)
}
