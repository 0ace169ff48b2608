package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrIo is returned when the module file cannot be read.
	ErrIo = errors.New("module file unreadable")

	// ErrCompile is returned for malformed or unrecognized module binaries.
	ErrCompile = errors.New("module failed to compile")

	// ErrLink is returned when a module requires imports the host does not provide.
	ErrLink = errors.New("module import unsatisfied")

	// ErrMissingExport is returned when the entry point is absent or has the
	// wrong signature.
	ErrMissingExport = errors.New("module entry point missing or mismatched")

	// ErrTrapped is returned when a module fails during execution.
	ErrTrapped = errors.New("module trapped")

	// ErrTimeout is returned when a module does not return in time.
	ErrTimeout = errors.New("module timed out")

	// ErrContractViolation is returned when the caller hands invalid input
	// to an invocation.
	ErrContractViolation = errors.New("contract violation")
)

// LoadErrorKind classifies a load failure.
type LoadErrorKind int

const (
	LoadIo LoadErrorKind = iota
	LoadCompile
	LoadLink
	LoadMissingExport
	LoadTimeout
)

// String returns the kind name.
func (k LoadErrorKind) String() string {
	switch k {
	case LoadIo:
		return "io"
	case LoadCompile:
		return "compile"
	case LoadLink:
		return "link"
	case LoadMissingExport:
		return "missing export"
	case LoadTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

func (k LoadErrorKind) sentinel() error {
	switch k {
	case LoadIo:
		return ErrIo
	case LoadCompile:
		return ErrCompile
	case LoadLink:
		return ErrLink
	case LoadTimeout:
		return ErrTimeout
	default:
		return ErrMissingExport
	}
}

// LoadError is returned by loaders. It is terminal for that load attempt
// only; a previously loaded handle stays usable.
type LoadError struct {
	Kind LoadErrorKind
	Path string
	Err  error
}

// NewLoadError creates a LoadError of the given kind.
func NewLoadError(kind LoadErrorKind, path string, err error) *LoadError {
	return &LoadError{Kind: kind, Path: path, Err: err}
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: %s", e.Path, e.Kind.sentinel())
	}
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Kind.sentinel(), e.Err)
}

// Unwrap returns the kind sentinel and the cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// RuntimeErrorKind classifies an invocation failure.
type RuntimeErrorKind int

const (
	Trapped RuntimeErrorKind = iota
	Timeout
)

// String returns the kind name.
func (k RuntimeErrorKind) String() string {
	switch k {
	case Trapped:
		return "trapped"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// RuntimeError is returned when the module call fails. It is never retried
// automatically.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
	Err     error
}

// Trap creates a Trapped runtime error.
func Trap(err error) *RuntimeError {
	return &RuntimeError{Kind: Trapped, Message: err.Error(), Err: err}
}

// TimedOut creates a Timeout runtime error.
func TimedOut(err error) *RuntimeError {
	return &RuntimeError{Kind: Timeout, Message: err.Error(), Err: err}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("module %s: %s", e.Kind, e.Message)
}

// Unwrap returns the kind sentinel and the cause.
func (e *RuntimeError) Unwrap() []error {
	sentinel := ErrTrapped
	if e.Kind == Timeout {
		sentinel = ErrTimeout
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// ContractViolation reports invalid caller input rejected before the module
// is called.
type ContractViolation struct {
	Reason string
	Err    error
}

// Violation creates a ContractViolation.
func Violation(reason string, err error) *ContractViolation {
	return &ContractViolation{Reason: reason, Err: err}
}

func (e *ContractViolation) Error() string {
	if e.Err == nil {
		return "contract violation: " + e.Reason
	}
	return fmt.Sprintf("contract violation: %s: %v", e.Reason, e.Err)
}

// Unwrap returns ErrContractViolation and the cause.
func (e *ContractViolation) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrContractViolation}
	}
	return []error{ErrContractViolation, e.Err}
}
