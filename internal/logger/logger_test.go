package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hlvm-dev/hqlc/internal/logger"
)

func TestLocationOrNilComputesLineAndColumn(t *testing.T) {
	source := &logger.Source{Contents: "(a 1)\n(b 2)", PrettyPath: "test.hql"}
	loc := logger.Loc{Start: 3}
	r := logger.Range{Loc: loc, Len: 1}

	msgLoc := logger.LocationOrNil(source, r)
	assert.NotNil(t, msgLoc)
	assert.Equal(t, 1, msgLoc.Line)
	assert.Equal(t, 3, msgLoc.Column)
	assert.Equal(t, "(a 1)", msgLoc.LineText)
}

func TestParseErrorSatisfiesError(t *testing.T) {
	var err error = &logger.ParseError{Message: "unexpected end of input"}
	assert.EqualError(t, err, "unexpected end of input")
}

func TestArityErrorMessage(t *testing.T) {
	err := &logger.ArityError{Form: "unless", Expected: ">=1", Actual: 0}
	assert.Equal(t, "unless: expected >=1 argument(s), got 0", err.Error())
}
