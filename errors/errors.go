package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseInit     Phase = "init"     // instance negotiation and creation
	PhaseSession  Phase = "session"  // session, spaces, swapchains
	PhaseFrame    Phase = "frame"    // wait/locate/begin/end
	PhaseInput    Phase = "input"    // trackers, actions, profiles
	PhaseRegistry Phase = "registry" // extension and adapter registration
	PhaseConfig   Phase = "config"   // settings loading
	PhaseGraphics Phase = "graphics" // graphics adapter
	PhasePlugin   Phase = "plugin"   // WebAssembly extension plugins
)

// Kind categorizes the error
type Kind string

const (
	KindMissingExtension      Kind = "missing_extension"
	KindNoSystem              Kind = "no_system"
	KindUnsupportedViewConfig Kind = "unsupported_view_config"
	KindInstanceCreate        Kind = "instance_create"
	KindSessionCreate         Kind = "session_create"
	KindSpaceCreate           Kind = "space_create"
	KindSwapchainCreate       Kind = "swapchain_create"
	KindRuntimeCall           Kind = "runtime_call"
	KindPathUnsupported       Kind = "path_unsupported"
	KindKindMismatch          Kind = "kind_mismatch"
	KindImageAcquired         Kind = "image_acquired"
	KindAttached              Kind = "attached"
	KindNotFound              Kind = "not_found"
	KindNotInitialized        Kind = "not_initialized"
	KindAlreadyInitialized    Kind = "already_initialized"
	KindNotRunning            Kind = "not_running"
	KindInvalidInput          Kind = "invalid_input"
	KindUnsupported           Kind = "unsupported"
	KindInvalidData           Kind = "invalid_data"
)

// Sentinels for errors.Is checks against the fatal-init and contract classes.
var (
	ErrMissingExtension      = &Error{Phase: PhaseInit, Kind: KindMissingExtension}
	ErrNoSystem              = &Error{Phase: PhaseInit, Kind: KindNoSystem}
	ErrUnsupportedViewConfig = &Error{Phase: PhaseInit, Kind: KindUnsupportedViewConfig}
	ErrAttached              = &Error{Phase: PhaseInput, Kind: KindAttached}
	ErrKindMismatch          = &Error{Phase: PhaseInput, Kind: KindKindMismatch}
	ErrImageAcquired         = &Error{Phase: PhaseFrame, Kind: KindImageAcquired}
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Call   string // runtime entry point, e.g. "xrCreateSession"
	Result string // stringified runtime result code
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Call != "" {
		b.WriteString(": ")
		b.WriteString(e.Call)
		if e.Result != "" {
			b.WriteString(" returned ")
			b.WriteString(e.Result)
		}
	}

	if e.Detail != "" {
		if e.Call != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the record path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Call sets the runtime entry point and its result
func (b *Builder) Call(name string, result fmt.Stringer) *Builder {
	b.err.Call = name
	if result != nil {
		b.err.Result = result.String()
	}
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// RuntimeCall creates an error for a failed runtime entry point
func RuntimeCall(phase Phase, kind Kind, call string, result fmt.Stringer) *Error {
	e := &Error{
		Phase: phase,
		Kind:  kind,
		Call:  call,
	}
	if result != nil {
		e.Result = result.String()
	}
	return e
}

// NoSystem creates an error for a form factor the runtime has no system for
func NoSystem(formFactor string, result fmt.Stringer) *Error {
	e := RuntimeCall(PhaseInit, KindNoSystem, "xrGetSystem", result)
	e.Detail = fmt.Sprintf("no system for form factor %s", formFactor)
	e.Value = formFactor
	return e
}

// UnsupportedViewConfig creates an error for a view configuration the system lacks
func UnsupportedViewConfig(viewConfig string) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindUnsupportedViewConfig,
		Detail: fmt.Sprintf("view configuration %s is not supported", viewConfig),
		Value:  viewConfig,
	}
}

// KindMismatch creates a contract violation for a typed read on the wrong action kind
func KindMismatch(action, have, want string) *Error {
	return &Error{
		Phase:  PhaseInput,
		Kind:   KindKindMismatch,
		Path:   []string{action},
		Detail: fmt.Sprintf("action is %s, read expects %s", have, want),
	}
}

// Attached creates a contract violation for mutating an attached action set
func Attached(actionSet, detail string) *Error {
	return &Error{
		Phase:  PhaseInput,
		Kind:   KindAttached,
		Path:   []string{actionSet},
		Detail: detail,
	}
}

// ImageAcquired creates a contract violation for reusing an acquired swapchain image
func ImageAcquired(index uint32) *Error {
	return &Error{
		Phase:  PhaseFrame,
		Kind:   KindImageAcquired,
		Detail: fmt.Sprintf("swapchain image %d was not released", index),
		Value:  index,
	}
}

// NotInitialized creates a not-initialized error for a missing instance/session
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// AlreadyInitialized creates an error for a second creation of a singleton handle
func AlreadyInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAlreadyInitialized,
		Detail: fmt.Sprintf("%s already created", component),
	}
}

// NotRunning creates an error for operations that need a running session
func NotRunning(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotRunning,
		Detail: "session is not running",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, id any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, id),
		Value:  id,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// MissingExtensionsError is returned when the runtime lacks mandatory extensions.
// It matches ErrMissingExtension under errors.Is.
type MissingExtensionsError struct {
	Extensions []string
}

// NewMissingExtensionsError creates an error listing the unsupported mandatory extensions
func NewMissingExtensionsError(names []string) *MissingExtensionsError {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return &MissingExtensionsError{Extensions: sorted}
}

func (e *MissingExtensionsError) Error() string {
	if len(e.Extensions) == 0 {
		return "[init] missing_extension: no extensions specified"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[init] missing_extension: runtime does not support %d mandatory extension(s):", len(e.Extensions)))
	for _, name := range e.Extensions {
		b.WriteString("\n  - ")
		b.WriteString(name)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *MissingExtensionsError) Is(target error) bool {
	switch t := target.(type) {
	case *MissingExtensionsError:
		return true
	case *Error:
		return t.Phase == PhaseInit && t.Kind == KindMissingExtension
	}
	return false
}

// SessionCreate creates a fatal-session error
func SessionCreate(kind Kind, call string, result fmt.Stringer, detail string) *Error {
	e := RuntimeCall(PhaseSession, kind, call, result)
	e.Detail = detail
	return e
}

// ParseFailed creates a parsing error
func ParseFailed(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
