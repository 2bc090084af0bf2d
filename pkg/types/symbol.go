// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "strings"

// SourceType is the host's provenance tag for a symbol's current name. It is
// opaque to the engine: a rename passes the matched symbol's tag through
// unchanged.
type SourceType int

const (
	SourceDefault     SourceType = iota // Synthetic name assigned by the decompiler
	SourceAnalysis                      // Name produced by automatic analysis
	SourceImported                      // Name taken from imported debug info
	SourceUserDefined                   // Name chosen by a user or a tool
)

func (s SourceType) String() string {
	switch s {
	case SourceAnalysis:
		return "ANALYSIS"
	case SourceImported:
		return "IMPORTED"
	case SourceUserDefined:
		return "USER_DEFINED"
	default:
		return "DEFAULT"
	}
}

// ParseSourceType maps a snapshot tag to a SourceType. Unknown or empty tags
// fall back to SourceDefault.
func ParseSourceType(s string) SourceType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ANALYSIS":
		return SourceAnalysis
	case "IMPORTED":
		return SourceImported
	case "USER_DEFINED":
		return SourceUserDefined
	default:
		return SourceDefault
	}
}

// Symbol is one named storage location owned by the host program model: a
// parameter or a local variable of a function. The engine reads the current
// name and, on a match, requests a rename; it never creates or destroys
// symbols.
type Symbol interface {
	// Name returns the symbol's current name.
	Name() string

	// Source returns the provenance tag of the current name.
	Source() SourceType

	// SetName asks the host to rename the symbol. The host may refuse —
	// typically wrapping ErrDuplicateName when the name is already bound in
	// the function, or ErrInvalidName when the name violates host rules.
	// On success the symbol's name and source are updated in place.
	SetName(name string, source SourceType) error
}

// FunctionHandle is the engine's entire view of a decompiled function. Both
// collections must be re-queried for every directive: renames performed
// earlier in a pass mutate the model in place and must be visible to later
// directives.
type FunctionHandle interface {
	// Name returns the function's display name.
	Name() string

	// Parameters returns the function's current parameter symbols.
	Parameters() []Symbol

	// LocalVariables returns the function's current local-variable symbols.
	LocalVariables() []Symbol
}
