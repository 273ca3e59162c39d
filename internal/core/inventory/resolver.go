package inventory

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/mvantol/fabricpush/internal/core/domain"
)

// Well-known inventory variables.
const (
	VarHost     = "ansible_host"
	VarUser     = "ansible_user"
	VarPassword = "ansible_password"
)

// ArtifactSuffix is the filename suffix for rendered configuration
// artifacts, looked up as <configs-dir>/<hostname>.cfg.
const ArtifactSuffix = ".cfg"

// =============================================================================
// Resolver
// =============================================================================

// Resolver flattens an inventory tree into deployment targets with
// resolved credentials and matched configuration artifacts.
type Resolver struct {
	configs    fs.FS  // rooted at the configs directory; nil disables artifact lookup
	configsDir string // prefix recorded on targets for later file reads
	logger     *slog.Logger
}

// NewResolver creates a resolver. configs is the filesystem holding
// rendered artifacts and configsDir its path as seen by the caller.
func NewResolver(configs fs.FS, configsDir string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		configs:    configs,
		configsDir: configsDir,
		logger:     logger.With("component", "resolver"),
	}
}

// Options controls one resolution pass.
type Options struct {
	// Limit restricts emission to hosts found directly under one of
	// the named groups. Traversal still descends into every group so
	// that nested limited groups are reached.
	Limit []string
}

// Resolve walks the tree depth-first and returns one target per
// distinguishable host. Single-host problems (missing address, missing
// credentials) drop the host with a diagnostic; only an empty final
// target list is fatal.
func (r *Resolver) Resolve(root *Node, opts Options) ([]domain.Target, error) {
	limit := map[string]bool{}
	for _, g := range opts.Limit {
		limit[g] = true
	}

	var targets []domain.Target
	seen := map[string]bool{}

	var walk func(node *Node, group string, groups []string, inherited map[string]any)
	walk = func(node *Node, group string, groups []string, inherited map[string]any) {
		merged := mergeVars(inherited, node.Vars)

		emit := len(limit) == 0 || limit[group]
		for _, hostname := range node.HostOrder {
			if !emit {
				continue
			}
			if seen[hostname] {
				r.logger.Debug("duplicate host in inventory, keeping first occurrence", "host", hostname, "group", group)
				continue
			}
			target, err := r.resolveHost(hostname, node.Hosts[hostname], merged, groups)
			if err != nil {
				r.logger.Warn("dropping host", "host", hostname, "error", err)
				continue
			}
			seen[hostname] = true
			targets = append(targets, target)
		}

		for _, name := range node.ChildOrder {
			walk(node.Children[name], name, append(groups, name), merged)
		}
	}
	walk(root, "", nil, nil)

	if len(targets) == 0 {
		return nil, &ResolutionError{Filter: opts.Limit}
	}
	return targets, nil
}

// resolveHost builds one target from host fields plus the merged group
// vars in scope at its level.
func (r *Resolver) resolveHost(hostname string, hostVars, groupVars map[string]any, groups []string) (domain.Target, error) {
	address, ok := varString(hostVars[VarHost])
	if !ok {
		return domain.Target{}, fmt.Errorf("no %s set", VarHost)
	}

	creds, err := resolveCredentials(hostname, hostVars, groupVars)
	if err != nil {
		return domain.Target{}, err
	}

	target := domain.Target{
		Hostname:    hostname,
		Address:     address,
		Credentials: creds,
		Groups:      append([]string(nil), groups...),
	}

	if path, found := r.lookupArtifact(hostname); found {
		target.ArtifactPath = path
	} else {
		r.logger.Debug("no configuration artifact for host", "host", hostname)
	}

	return target, nil
}

// resolveCredentials applies host-over-group precedence independently
// for username and password. Missing fields are reported by name.
func resolveCredentials(hostname string, hostVars, groupVars map[string]any) (domain.Credentials, error) {
	var creds domain.Credentials
	var missing []string

	if v, ok := firstVar(hostVars, groupVars, VarUser); ok {
		creds.Username = v
	} else {
		missing = append(missing, VarUser)
	}
	if v, ok := firstVar(hostVars, groupVars, VarPassword); ok {
		creds.Password = v
	} else {
		missing = append(missing, VarPassword)
	}

	if len(missing) > 0 {
		return domain.Credentials{}, &CredentialError{Host: hostname, Missing: missing}
	}
	return creds, nil
}

// lookupArtifact checks for <configs-dir>/<hostname>.cfg.
func (r *Resolver) lookupArtifact(hostname string) (string, bool) {
	if r.configs == nil {
		return "", false
	}
	name := hostname + ArtifactSuffix
	if _, err := fs.Stat(r.configs, name); err != nil {
		return "", false
	}
	return filepath.Join(r.configsDir, name), true
}

// =============================================================================
// Var helpers
// =============================================================================

// mergeVars layers node vars over inherited vars, node-level winning.
func mergeVars(inherited, own map[string]any) map[string]any {
	merged := make(map[string]any, len(inherited)+len(own))
	for k, v := range inherited {
		merged[k] = v
	}
	for k, v := range own {
		merged[k] = v
	}
	return merged
}

// firstVar looks a key up host-level first, then group-level.
func firstVar(hostVars, groupVars map[string]any, key string) (string, bool) {
	if v, ok := varString(hostVars[key]); ok {
		return v, true
	}
	return varString(groupVars[key])
}

// varString coerces a YAML scalar to a string.
func varString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		if s == "" {
			return "", false
		}
		return s, true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
