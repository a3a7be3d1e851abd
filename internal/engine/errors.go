package engine

import (
	"errors"
	"fmt"

	"github.com/quillon/hornbeam/internal/term"
)

// ResolutionError represents an error that aborts query evaluation.
//
// Ordinary "no matching data" outcomes are never errors - they are
// domain failures, recovered locally by backtracking. A ResolutionError
// terminates the whole query and is reported to the caller with its
// code intact so the four taxonomy cases stay distinguishable.
type ResolutionError struct {
	// Code identifies the error category.
	Code ResolutionErrorCode

	// Message is a human-readable description.
	Message string

	// Pred identifies the predicate being solved, when known.
	Pred term.Indicator

	// Cause is the underlying error, if any.
	Cause error
}

// ResolutionErrorCode categorizes resolution errors.
type ResolutionErrorCode string

const (
	// ErrCodeInstantiation indicates a native predicate received a
	// structurally invalid argument - neither a valid bound value nor
	// a genuinely free variable.
	ErrCodeInstantiation ResolutionErrorCode = "INSTANTIATION_ERROR"

	// ErrCodeHostBinding indicates a native predicate executed against
	// a session with no bound project snapshot. This is a fatal
	// integration defect, never caught or retried.
	ErrCodeHostBinding ResolutionErrorCode = "HOST_BINDING_ERROR"

	// ErrCodeSandbox indicates the sandboxed expression evaluator
	// could not evaluate a malformed expression. Distinct from a false
	// evaluation outcome, which is an ordinary failure.
	ErrCodeSandbox ResolutionErrorCode = "SANDBOX_EVALUATION_ERROR"

	// ErrCodeUnknownPredicate indicates a goal referenced a predicate
	// the registry has never heard of.
	ErrCodeUnknownPredicate ResolutionErrorCode = "UNKNOWN_PREDICATE"

	// ErrCodeQuotaExceeded indicates the resolution step quota was
	// exhausted, cutting off a runaway (likely non-terminating) query.
	ErrCodeQuotaExceeded ResolutionErrorCode = "STEP_QUOTA_EXCEEDED"
)

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Pred.Name != "" {
		return fmt.Sprintf("%s: %s (predicate=%s)", e.Code, e.Message, e.Pred)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// IsInstantiationError reports whether err is an instantiation error.
// Uses errors.As to handle wrapped errors.
func IsInstantiationError(err error) bool {
	return hasCode(err, ErrCodeInstantiation)
}

// IsHostBindingError reports whether err is a host binding error.
func IsHostBindingError(err error) bool {
	return hasCode(err, ErrCodeHostBinding)
}

// IsSandboxError reports whether err is a sandbox evaluation error.
func IsSandboxError(err error) bool {
	return hasCode(err, ErrCodeSandbox)
}

func hasCode(err error, code ResolutionErrorCode) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewInstantiationError creates a ResolutionError for a structurally
// invalid argument.
func NewInstantiationError(pred term.Indicator, argIndex int, got term.Term) *ResolutionError {
	return &ResolutionError{
		Code:    ErrCodeInstantiation,
		Message: fmt.Sprintf("argument %d is neither sufficiently instantiated nor free: %s", argIndex+1, term.String(got)),
		Pred:    pred,
	}
}

// NewHostBindingError creates a ResolutionError for a session with no
// bound project snapshot.
func NewHostBindingError(pred term.Indicator, sessionID string) *ResolutionError {
	return &ResolutionError{
		Code:    ErrCodeHostBinding,
		Message: fmt.Sprintf("no project snapshot bound to session %s", sessionID),
		Pred:    pred,
	}
}

// NewSandboxError creates a ResolutionError for a malformed sandbox
// expression.
func NewSandboxError(pred term.Indicator, expr string, cause error) *ResolutionError {
	return &ResolutionError{
		Code:    ErrCodeSandbox,
		Message: fmt.Sprintf("cannot evaluate expression %q", expr),
		Pred:    pred,
		Cause:   cause,
	}
}
