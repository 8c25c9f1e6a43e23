package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hqlc/internal/logger"
)

func TestToDiagnostics_MapsParseErrorWithSource(t *testing.T) {
	text := "(def"
	errs := []error{&logger.ParseError{Range: logger.Range{Loc: logger.Loc{Start: 1}, Len: 3}, Message: "unterminated form"}}
	diags := toDiagnostics(text, errs)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnosticSource, diags[0].Source)
	assert.Contains(t, diags[0].Message, "unterminated form")
}

func TestToDiagnostics_SkipsErrorsWithoutRange(t *testing.T) {
	errs := []error{&logger.RuntimeError{File: "a.hql", Line: 1, Column: 0, Message: "boom"}}
	diags := toDiagnostics("", errs)
	assert.Empty(t, diags)
}

func TestToDiagnostics_AccumulatesMultiple(t *testing.T) {
	text := "(recur 1) (def x 2)"
	errs := []error{
		&logger.ValidationError{Range: logger.Range{Loc: logger.Loc{Start: 1}}, Form: "recur", Expected: "loop body", Actual: "top level"},
		&logger.TransformError{Range: logger.Range{Loc: logger.Loc{Start: 10}}, Cause: "bad form"},
	}
	diags := toDiagnostics(text, errs)
	assert.Len(t, diags, 2)
}
