// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package suggest

import (
	"go.uber.org/zap"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

// DirectiveStatus classifies what happened to one directive.
type DirectiveStatus int

const (
	// StatusApplied means the host accepted the rename.
	StatusApplied DirectiveStatus = iota
	// StatusSkipped means no symbol carried the old name.
	StatusSkipped
	// StatusRejected means the host refused the rename; see Diagnostics.
	StatusRejected
)

// ApplyResult holds the outcome of applying a directive batch to one function.
type ApplyResult struct {
	Applied     int                // Directives whose rename the host accepted
	Diagnostics []types.Diagnostic // Host rejections, in directive order
	Statuses    []DirectiveStatus  // Per-directive outcome, aligned with the input
}

// Applier applies parsed directives to a function's symbol set. The zero
// value is ready to use; Logger is optional.
type Applier struct {
	// Logger receives a warn entry for every rename the host rejects.
	// Nil disables logging; the rejection still lands in Diagnostics.
	Logger *zap.Logger
}

// Apply attempts every directive in order against the function's current
// symbols and reports how many renames the host accepted.
//
// For each directive the function's local variables are scanned before its
// parameters, so a local shadowing a same-named parameter wins. Both
// collections are queried fresh per directive: a symbol renamed by an earlier
// directive is matched under its new name, never its stale one. The first
// matching symbol receives exactly one rename request. A directive whose old
// name matches nothing is a no-op, not an error. A rename the host refuses is
// recorded as a diagnostic and the batch continues; nothing aborts it.
func (a *Applier) Apply(fn types.FunctionHandle, directives []types.RenameDirective) *ApplyResult {
	log := a.Logger
	if log == nil {
		log = zap.NewNop()
	}

	result := &ApplyResult{
		Statuses: make([]DirectiveStatus, len(directives)),
	}

	for i, d := range directives {
		sym := findSymbol(fn, d.OldName)
		if sym == nil {
			// The symbol may already have been renamed, or never existed.
			result.Statuses[i] = StatusSkipped
			continue
		}

		if err := sym.SetName(d.NewName, sym.Source()); err != nil {
			result.Statuses[i] = StatusRejected
			result.Diagnostics = append(result.Diagnostics, types.Diagnostic{
				Directive: d,
				Err:       err,
			})
			log.Warn("rename rejected by program model",
				zap.String("function", fn.Name()),
				zap.String("old", d.OldName),
				zap.String("new", d.NewName),
				zap.Error(err))
			continue
		}

		result.Statuses[i] = StatusApplied
		result.Applied++
	}

	return result
}

// findSymbol scans the function's current symbol collections for one whose
// name equals oldName, locals first.
func findSymbol(fn types.FunctionHandle, oldName string) types.Symbol {
	for _, v := range fn.LocalVariables() {
		if v.Name() == oldName {
			return v
		}
	}
	for _, p := range fn.Parameters() {
		if p.Name() == oldName {
			return p
		}
	}
	return nil
}
