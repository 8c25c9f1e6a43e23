package logger

import "fmt"

// The error taxonomy is closed: every failure the compiler core raises is
// one of these kinds. Each converts to a Msg holding only its message text
// (no location, so it renders without source context), while still
// satisfying the standard `error` interface for callers that want a
// Go-idiomatic return.

type ParseError struct {
	Range   Range
	Message string
}

func (e *ParseError) Error() string { return e.Message }

func (e *ParseError) Msg() Msg {
	return Msg{Kind: Error, Data: MsgData{Text: e.Message}}
}

// MsgSource is implemented by every closed error kind below, letting a
// caller holding only an `error` value (ReadResult, macro.ExpandAll, and
// lower.Lower all return plain []error) render it through the logger's
// message printer instead of a bare %v; the Msg has no location, so the
// output is the message text without a source line or caret. All six
// kinds report MsgKind Error: the taxonomy distinguishes *which compiler
// stage* rejected the form, not its severity — this compiler never emits a
// warning-level diagnostic of its own.
type MsgSource interface {
	Msg() Msg
}

type ExpansionErrorCause uint8

const (
	ExpansionCauseIterationLimit ExpansionErrorCause = iota
	ExpansionCauseArity
	ExpansionCauseEval
)

// ExpansionError is raised by the macro expander (4.C): either the
// MAX_EXPANSION_ITERATIONS fixed-point bound was exceeded, or a macro body
// threw while being evaluated inline.
type ExpansionError struct {
	Range Range
	Cause ExpansionErrorCause
	Text  string
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("expansion error: %s", e.Text)
}

func (e *ExpansionError) Msg() Msg {
	return Msg{Kind: Error, Data: MsgData{Text: e.Error()}}
}

// ArityError is the specific ExpansionError shape raised when a macro call
// supplies too few or too many positional arguments (4.C).
type ArityError struct {
	Range    Range
	Form     string
	Expected string
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: expected %s argument(s), got %d", e.Form, e.Expected, e.Actual)
}

func (e *ArityError) Msg() Msg {
	return Msg{Kind: Error, Data: MsgData{Text: e.Error()}}
}

// ValidationError reports a structural contract violated on a form: a
// missing required clause, or an argument of the wrong kind/arity (4.D).
type ValidationError struct {
	Range    Range
	Form     string
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Form, e.Expected, e.Actual)
}

func (e *ValidationError) Msg() Msg {
	return Msg{Kind: Error, Data: MsgData{Text: e.Error()}}
}

// TransformError reports an invariant violated during lowering: an
// unexpected nil transform result or an unhandled IR variant (4.D).
type TransformError struct {
	Range Range
	Cause string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform error: %s", e.Cause)
}

func (e *TransformError) Msg() Msg {
	return Msg{Kind: Error, Data: MsgData{Text: e.Error()}}
}

// RuntimeError wraps an error raised by the emitted program's execution,
// carrying the location the source map resolved it back to (§7).
type RuntimeError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

func (e *RuntimeError) Msg() Msg {
	return Msg{Kind: Error, Data: MsgData{Text: e.Error()}}
}
