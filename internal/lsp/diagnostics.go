package lsp

import (
	"github.com/hlvm-dev/hqlc/internal/logger"
	"go.lsp.dev/protocol"
)

// diagnosticSource is §6's constant: "source is the constant 'hql'".
const diagnosticSource = "hql"

// toDiagnostics converts the pipeline's closed error taxonomy (§7) into
// LSP Diagnostics. Every stage's error carries a Range except RuntimeError,
// which instead carries the source-map-resolved Line/Column directly
// (§7: "wrapped from the emitted program's execution, carrying the mapped
// source location") — diagnostics only ever come from the four
// compile-time kinds, since RuntimeError is reported out of band from an
// actual execution, not from Analyze.
func toDiagnostics(text string, errs []error) []protocol.Diagnostic {
	diags := make([]protocol.Diagnostic, 0, len(errs))
	for _, err := range errs {
		r, ok := errorRange(err)
		if !ok {
			continue
		}
		diags = append(diags, protocol.Diagnostic{
			Range:    locToRange(text, r.Loc, int(r.Len)),
			Severity: protocol.DiagnosticSeverityError,
			Source:   diagnosticSource,
			Message:  err.Error(),
		})
	}
	return diags
}

func errorRange(err error) (logger.Range, bool) {
	switch e := err.(type) {
	case *logger.ParseError:
		return e.Range, true
	case *logger.ExpansionError:
		return e.Range, true
	case *logger.ArityError:
		return e.Range, true
	case *logger.ValidationError:
		return e.Range, true
	case *logger.TransformError:
		return e.Range, true
	}
	return logger.Range{}, false
}
