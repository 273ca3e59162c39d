package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrEmptyInput is returned when the inventory document is empty.
	ErrEmptyInput = errors.New("inventory is empty")

	// ErrInvalidYAML is returned when the inventory is not valid YAML.
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// ErrNotMapping is returned when the top level of the inventory is
	// not a mapping.
	ErrNotMapping = errors.New("inventory top level must be a mapping")

	// ErrNoTargets is returned when traversal and filtering leave no
	// deployable targets. This is fatal to the whole run.
	ErrNoTargets = errors.New("no deployment targets resolved")

	// ErrMissingCredentials is returned when a host's credentials
	// cannot be resolved from host or group vars.
	ErrMissingCredentials = errors.New("missing credentials")
)

// CredentialError reports which credential field(s) could not be
// resolved for a host. It is recovered locally during resolution: the
// host is dropped with a diagnostic and the run continues.
type CredentialError struct {
	Host    string
	Missing []string // variable names, e.g. "ansible_password"
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("host %s: missing credential var(s): %s", e.Host, strings.Join(e.Missing, ", "))
}

func (e *CredentialError) Unwrap() error {
	return ErrMissingCredentials
}

// ResolutionError reports that an entire run cannot proceed because no
// targets remained after traversal and scope filtering.
type ResolutionError struct {
	Filter []string // active scope filter, nil when none
}

func (e *ResolutionError) Error() string {
	if len(e.Filter) == 0 {
		return "no deployment targets resolved from inventory"
	}
	return fmt.Sprintf("no deployment targets resolved for group filter [%s]", strings.Join(e.Filter, ", "))
}

func (e *ResolutionError) Unwrap() error {
	return ErrNoTargets
}
