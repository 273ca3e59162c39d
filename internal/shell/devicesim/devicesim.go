// Package devicesim is an in-memory device running the command API:
// it accepts JSON-RPC command batches on /command-api, tracks named
// configuration sessions through their lifecycle, and can inject
// faults. It backs the eapi and deploy tests and the `fabricpush
// mockdevice` command for local experiments.
package devicesim

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// =============================================================================
// Session State
// =============================================================================

// SessionState is the lifecycle position of one named session.
type SessionState string

const (
	SessionCreated   SessionState = "created"
	SessionCleared   SessionState = "cleared"
	SessionPopulated SessionState = "populated"
	SessionCommitted SessionState = "committed"
	SessionAborted   SessionState = "aborted"
)

// Session records one named configuration session on the simulated
// device.
type Session struct {
	Name          string
	State         SessionState
	Lines         []string
	TerminalCalls int // successful commit/abort transitions; must end at exactly 1
}

func (s *Session) terminal() bool {
	return s.State == SessionCommitted || s.State == SessionAborted
}

// =============================================================================
// Simulator
// =============================================================================

// Faults configures induced failures.
type Faults struct {
	// RejectLine fails any config line containing this substring.
	RejectLine string

	// FailCommit fails the commit command without terminating the
	// session.
	FailCommit bool

	// FailDiff fails the session diff command.
	FailDiff bool
}

// Simulator is one simulated device. Safe for concurrent use.
type Simulator struct {
	mu       sync.Mutex
	username string
	password string
	sessions map[string]*Session
	running  []string
	history  []string
	faults   Faults
	logger   *slog.Logger
}

// New creates a simulator requiring the given credentials. Empty
// username disables the auth check.
func New(username, password string, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		username: username,
		password: password,
		sessions: map[string]*Session{},
		logger:   logger.With("component", "devicesim"),
	}
}

// SetFaults replaces the fault configuration.
func (s *Simulator) SetFaults(f Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

// Handler returns the HTTP handler exposing the command endpoint.
func (s *Simulator) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/command-api", s.handleCommands)
	return r
}

// =============================================================================
// Inspection (test hooks)
// =============================================================================

// Sessions returns a snapshot of every session seen so far.
func (s *Simulator) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		copied := *sess
		copied.Lines = append([]string(nil), sess.Lines...)
		out = append(out, copied)
	}
	return out
}

// RunningConfig returns the committed configuration lines.
func (s *Simulator) RunningConfig() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.running...)
}

// History returns every command executed, in order.
func (s *Simulator) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// =============================================================================
// Wire Handling
// =============================================================================

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  struct {
		Version int      `json:"version"`
		Cmds    []string `json:"cmds"`
		Format  string   `json:"format"`
	} `json:"params"`
	ID string `json:"id"`
}

type cmdOutput struct {
	Output string `json:"output"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Result  []cmdOutput `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

func (s *Simulator) handleCommands(w http.ResponseWriter, r *http.Request) {
	if s.username != "" {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.username || pass != s.password {
			w.Header().Set("WWW-Authenticate", `Basic realm="command-api"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Method != "runCmds" {
		writeJSON(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found"}})
		return
	}

	outputs, devErr := s.execute(req.Params.Cmds)
	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	if devErr != nil {
		resp.Error = devErr
	} else {
		resp.Result = outputs
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Command Execution
// =============================================================================

// execute runs a command batch. The batch stops at the first failing
// command; earlier commands stay applied (rollback is the client's
// explicit abort), which mirrors the real transport semantics.
func (s *Simulator) execute(cmds []string) ([]cmdOutput, *rpcError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *Session
	outputs := make([]cmdOutput, 0, len(cmds))

	for i, cmd := range cmds {
		s.history = append(s.history, cmd)
		out, err := s.executeOne(cmd, &current)
		if err != nil {
			s.logger.Debug("command failed", "index", i, "cmd", cmd, "error", err.Message)
			return nil, err
		}
		outputs = append(outputs, cmdOutput{Output: out})
	}
	return outputs, nil
}

func (s *Simulator) executeOne(cmd string, current **Session) (string, *rpcError) {
	trimmed := strings.TrimSpace(cmd)

	switch {
	case trimmed == "show version":
		return "fabricsim 1.0, simulated device\n", nil

	case strings.HasPrefix(trimmed, "configure session "):
		name := strings.TrimPrefix(trimmed, "configure session ")
		sess, ok := s.sessions[name]
		if !ok {
			sess = &Session{Name: name, State: SessionCreated}
			s.sessions[name] = sess
		}
		if sess.terminal() {
			return "", &rpcError{Code: 1000, Message: fmt.Sprintf("session %s is already terminated", name)}
		}
		*current = sess
		return "", nil

	case trimmed == "rollback clean-config":
		sess := *current
		if sess == nil {
			return "", &rpcError{Code: 1002, Message: "not in a configuration session"}
		}
		sess.Lines = nil
		sess.State = SessionCleared
		return "", nil

	case trimmed == "show session-config diffs":
		sess := *current
		if sess == nil {
			return "", &rpcError{Code: 1002, Message: "not in a configuration session"}
		}
		if s.faults.FailDiff {
			return "", &rpcError{Code: 1004, Message: "diff unavailable"}
		}
		return s.renderDiff(sess), nil

	case trimmed == "commit":
		sess := *current
		if sess == nil {
			return "", &rpcError{Code: 1002, Message: "not in a configuration session"}
		}
		if s.faults.FailCommit {
			return "", &rpcError{Code: 1005, Message: "commit rejected by configuration agent"}
		}
		sess.State = SessionCommitted
		sess.TerminalCalls++
		s.running = append([]string(nil), sess.Lines...)
		*current = nil
		return "", nil

	case trimmed == "abort":
		sess := *current
		if sess == nil {
			return "", &rpcError{Code: 1002, Message: "not in a configuration session"}
		}
		sess.State = SessionAborted
		sess.TerminalCalls++
		*current = nil
		return "", nil

	default:
		// Any other command is a configuration line for the current
		// session.
		sess := *current
		if sess == nil {
			return "", &rpcError{Code: 1002, Message: fmt.Sprintf("invalid command outside session: %s", trimmed)}
		}
		if s.faults.RejectLine != "" && strings.Contains(cmd, s.faults.RejectLine) {
			return "", &rpcError{Code: 1003, Message: fmt.Sprintf("invalid input: %s", trimmed)}
		}
		sess.Lines = append(sess.Lines, cmd)
		sess.State = SessionPopulated
		return "", nil
	}
}

// renderDiff produces unified-diff-style text between the running
// config and the session's staged lines.
func (s *Simulator) renderDiff(sess *Session) string {
	var b strings.Builder
	b.WriteString("--- system:/running-config\n")
	b.WriteString(fmt.Sprintf("+++ session:/%s-session-config\n", sess.Name))
	b.WriteString(fmt.Sprintf("@@ -1,%d +1,%d @@\n", len(s.running), len(sess.Lines)))
	for _, line := range s.running {
		b.WriteString("-" + line + "\n")
	}
	for _, line := range sess.Lines {
		b.WriteString("+" + line + "\n")
	}
	return b.String()
}
