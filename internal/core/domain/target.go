package domain

import (
	"fmt"
	"log/slog"
)

// =============================================================================
// Credentials
// =============================================================================

// Credentials holds the username and password used to authenticate
// against a device's command API.
type Credentials struct {
	Username string
	Password string
}

// LogValue keeps the password out of log output. Only the password
// length is ever shown.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.Int("password_len", len(c.Password)),
	)
}

// String redacts the password.
func (c Credentials) String() string {
	return fmt.Sprintf("%s:<redacted:%d>", c.Username, len(c.Password))
}

// =============================================================================
// Target
// =============================================================================

// Target is one device selected for a deployment run: its resolved
// address, credentials, and the configuration artifact matched to it.
// Immutable once resolution completes.
type Target struct {
	Hostname    string
	Address     string
	Credentials Credentials

	// ArtifactPath is the path to the rendered configuration file for
	// this device. Empty when no artifact was found; the orchestrator
	// skips such targets without contacting them.
	ArtifactPath string

	// Groups lists the inventory groups the host was emitted under,
	// outermost first.
	Groups []string
}

// HasArtifact reports whether a configuration artifact was matched
// during resolution.
func (t Target) HasArtifact() bool {
	return t.ArtifactPath != ""
}
