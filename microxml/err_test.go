package microxml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiagnostics(t *testing.T) {
	require.Nil(t, Diagnostics(nil))
	require.Empty(t, Diagnostics(errors.New("other")))

	one := newRecoveryError(ErrUnknownEntity, Span{Line: 1, Column: 4}, "&x;")
	require.Equal(t, []*RecoveryError{one}, Diagnostics(one))

	two := newRecoveryError(ErrUnclosedElement, Span{Line: 2, Column: 1}, "a")
	joined := errors.Join(one, errors.New("other"), two)
	require.Equal(t, []*RecoveryError{one, two}, Diagnostics(joined))
}

func TestRecoveryError(t *testing.T) {
	e := newRecoveryError(ErrMalformedTag, Span{Line: 3, Column: 7}, "")
	require.Equal(t, "3:7: malformed start tag", e.Error())
	require.ErrorIs(t, e, ErrMalformedTag)

	e = newRecoveryError(ErrUnknownEntity, Span{Line: 1, Column: 2}, "&x;")
	require.Equal(t, `1:2: unknown entity reference "&x;"`, e.Error())
	require.Equal(t, "a&x;b\n ^", e.SourceLine("a&x;b"))

	e.Span.Line = 5
	require.Equal(t, "", e.SourceLine("one line"))
}
