package microxml

import (
	"errors"
	"fmt"
	"strings"
)

// Recoverable conditions reported by Parser.Parse. None of them stops the
// parse; each names the substitution that was applied.
var (
	ErrUnknownEntity       = errors.New("unknown entity reference")
	ErrInvalidCharRef      = errors.New("invalid character reference")
	ErrUnmatchedEndTag     = errors.New("unmatched end tag")
	ErrUnterminatedTag     = errors.New("unterminated start tag")
	ErrMalformedTag        = errors.New("malformed start tag")
	ErrDuplicateAttribute  = errors.New("duplicate attribute")
	ErrUnclosedElement     = errors.New("unclosed element")
	ErrUnterminatedSection = errors.New("unterminated section")
)

// RecoveryError describes one recovery applied while parsing.
type RecoveryError struct {
	Err   error  // one of the Err* values above
	Span  Span   // location of the offending token
	Token string // offending token text or name, may be empty
}

func newRecoveryError(err error, span Span, token string) *RecoveryError {
	return &RecoveryError{Err: err, Span: span, Token: token}
}

func (e *RecoveryError) Error() string {
	if e.Token == "" {
		return e.Span.String() + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s: %s %q", e.Span, e.Err, e.Token)
}

func (e *RecoveryError) Unwrap() error {
	return e.Err
}

// SourceLine returns the line of src the error points at, followed by a
// caret line marking the column. src must be the normalized input.
func (e *RecoveryError) SourceLine(src string) string {
	lines := strings.Split(src, "\n")
	if e.Span.Line < 1 || e.Span.Line > len(lines) {
		return ""
	}
	line := lines[e.Span.Line-1]
	col := e.Span.Column - 1
	if col < 0 {
		col = 0
	}
	return line + "\n" + strings.Repeat(" ", col) + "^"
}

// Diagnostics unpacks the error returned by Parser.Parse into the individual
// recovery errors, in input order.
func Diagnostics(err error) []*RecoveryError {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if multierr, ok := err.(interface{ Unwrap() []error }); ok {
		errs = multierr.Unwrap()
	}
	var out []*RecoveryError
	for _, err := range errs {
		var re *RecoveryError
		if errors.As(err, &re) {
			out = append(out, re)
		}
	}
	return out
}

// InternalError signals a defect in the mode tables: no rule matched, or a
// rule matched nothing without changing mode. It is raised with panic and
// can never be caused by input alone.
type InternalError struct {
	Mode string
	Span Span
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("microxml: internal error in mode %s at %s: %s", e.Mode, e.Span, e.Msg)
}
