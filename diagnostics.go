package mxml

import (
	"github.com/dpotapov/go-mxml/microxml"
)

// Diagnostic is the JSON form of a microxml.RecoveryError.
type Diagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
}

// NewDiagnostics collects the recovery errors joined in err. Other errors are
// skipped. The result is never nil so it encodes as a JSON array.
func NewDiagnostics(err error) []Diagnostic {
	out := []Diagnostic{}
	for _, re := range microxml.Diagnostics(err) {
		out = append(out, Diagnostic{
			Kind:    re.Err.Error(),
			Message: re.Error(),
			Token:   re.Token,
			Line:    re.Span.Line,
			Column:  re.Span.Column,
			Offset:  re.Span.Offset,
			Length:  re.Span.Length,
		})
	}
	return out
}
