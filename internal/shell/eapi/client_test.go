package eapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvantol/fabricpush/internal/core/domain"
	"github.com/mvantol/fabricpush/internal/shell/devicesim"
)

// newTestClient wires a client against a simulated device over TLS.
func newTestClient(t *testing.T, sim *devicesim.Simulator, creds domain.Credentials) *Client {
	t.Helper()
	srv := httptest.NewTLSServer(sim.Handler())
	t.Cleanup(srv.Close)

	return NewClient(Config{
		Host:        "leaf1",
		Address:     strings.TrimPrefix(srv.URL, "https://"),
		Credentials: creds,
		Timeout:     5 * time.Second,
	}, nil)
}

// =============================================================================
// Connect Tests
// =============================================================================

func TestConnect_ProbesDevice(t *testing.T) {
	sim := devicesim.New("admin", "secret", nil)
	c := newTestClient(t, sim, domain.Credentials{Username: "admin", Password: "secret"})
	defer c.Close()

	err := c.Connect(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, sim.History())
	assert.Equal(t, "show version", sim.History()[0])
}

func TestConnect_BadCredentials(t *testing.T) {
	sim := devicesim.New("admin", "secret", nil)
	c := newTestClient(t, sim, domain.Credentials{Username: "admin", Password: "wrong"})
	defer c.Close()

	err := c.Connect(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "leaf1", authErr.Host)
}

func TestConnect_Unreachable(t *testing.T) {
	c := NewClient(Config{
		Host:    "leaf1",
		Address: "127.0.0.1:1",
		Timeout: time.Second,
	}, nil)
	defer c.Close()

	err := c.Connect(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnect)
}

func TestConnect_MalformedResponse(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := NewClient(Config{
		Host:    "leaf1",
		Address: strings.TrimPrefix(srv.URL, "https://"),
		Timeout: time.Second,
	}, nil)
	defer c.Close()

	err := c.Connect(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestClose_Idempotent(t *testing.T) {
	sim := devicesim.New("", "", nil)
	c := newTestClient(t, sim, domain.Credentials{})
	require.NoError(t, c.Connect(context.Background()))

	c.Close()
	c.Close()
}

// =============================================================================
// Config Line Filtering Tests
// =============================================================================

func TestConfigLines_SkipsBlankAndBareKeywords(t *testing.T) {
	text := "hostname leaf1\n\n   \ninterface\ninterface Ethernet1\n   description\nip\nip routing\n"

	lines := ConfigLines(text)

	assert.Equal(t, []string{
		"hostname leaf1",
		"interface Ethernet1",
		"ip routing",
	}, lines)
}

func TestConfigLines_KeepsIndentationAndComments(t *testing.T) {
	text := "interface Ethernet1\n   no shutdown\n!\n"

	lines := ConfigLines(text)

	assert.Equal(t, []string{"interface Ethernet1", "   no shutdown", "!"}, lines)
}
