package constraints

import (
	"fmt"

	"github.com/quillon/hornbeam/internal/project"
)

// Kind classifies one diagnostic.
type Kind string

const (
	// KindMissingDependency flags a dependency a workspace must declare
	// but does not.
	KindMissingDependency Kind = "missing-dependency"

	// KindExtraneousDependency flags a dependency enforced to be absent
	// but declared anyway.
	KindExtraneousDependency Kind = "extraneous-dependency"

	// KindInvalidDependency flags a declared dependency whose range does
	// not match the enforced range.
	KindInvalidDependency Kind = "invalid-dependency"

	// KindMissingField flags a manifest field a workspace must carry but
	// does not.
	KindMissingField Kind = "missing-field"

	// KindExtraneousField flags a manifest field enforced to be absent
	// but present anyway.
	KindExtraneousField Kind = "extraneous-field"

	// KindInvalidField flags a manifest field whose value does not match
	// the enforced value.
	KindInvalidField Kind = "invalid-field"
)

// Diagnostic is one constraint violation.
type Diagnostic struct {
	// WorkspacePath is the offending workspace, as a root-relative path.
	WorkspacePath string `json:"workspacePath"`

	// Kind classifies the violation.
	Kind Kind `json:"kind"`

	// Subject is the dependency identifier or the dotted field path.
	Subject string `json:"subject"`

	// DependencyType is set for dependency diagnostics only.
	DependencyType project.DependencyType `json:"dependencyType,omitempty"`

	// Expected is the enforced range or value; empty for must-be-absent.
	Expected string `json:"expected,omitempty"`

	// Actual is the declared range or value; empty when absent.
	Actual string `json:"actual,omitempty"`
}

// String renders a one-line human-readable description.
func (d Diagnostic) String() string {
	switch d.Kind {
	case KindMissingDependency:
		return fmt.Sprintf("%s: missing dependency %s@%s (%s)",
			d.WorkspacePath, d.Subject, d.Expected, d.DependencyType)
	case KindExtraneousDependency:
		return fmt.Sprintf("%s: extraneous dependency %s@%s (%s)",
			d.WorkspacePath, d.Subject, d.Actual, d.DependencyType)
	case KindInvalidDependency:
		return fmt.Sprintf("%s: dependency %s must be %s, found %s (%s)",
			d.WorkspacePath, d.Subject, d.Expected, d.Actual, d.DependencyType)
	case KindMissingField:
		return fmt.Sprintf("%s: missing field %s, must be %q",
			d.WorkspacePath, d.Subject, d.Expected)
	case KindExtraneousField:
		return fmt.Sprintf("%s: extraneous field %s, found %q",
			d.WorkspacePath, d.Subject, d.Actual)
	case KindInvalidField:
		return fmt.Sprintf("%s: field %s must be %q, found %q",
			d.WorkspacePath, d.Subject, d.Expected, d.Actual)
	default:
		return fmt.Sprintf("%s: %s %s", d.WorkspacePath, d.Kind, d.Subject)
	}
}

// Report is the outcome of one constraint check.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// OK reports whether the check found no violations.
func (r *Report) OK() bool {
	return len(r.Diagnostics) == 0
}
