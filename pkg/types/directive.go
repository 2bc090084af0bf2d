// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types holds the shared value types of the suggestion engine and the
// narrow contract it consumes from a host program model.
package types

import (
	"errors"
	"fmt"
)

// RenameDirective is a single validated rename proposal extracted from
// suggestion text: rename the symbol currently called OldName to NewName.
// Directives are immutable once constructed and are consumed in the order
// they appeared in the input.
type RenameDirective struct {
	OldName string // Identifier as it currently appears in the function
	NewName string // Proposed replacement; always a valid C identifier
	Reason  string // Optional free-text rationale; may be empty
}

func (d RenameDirective) String() string {
	if d.Reason != "" {
		return fmt.Sprintf("%s -> %s: %s", d.OldName, d.NewName, d.Reason)
	}
	return fmt.Sprintf("%s -> %s", d.OldName, d.NewName)
}

// Rename rejection sentinels. Host models wrap these so callers can tell a
// name collision from a name the host considers malformed.
var (
	ErrDuplicateName = errors.New("duplicate name")
	ErrInvalidName   = errors.New("invalid name")
)

// Diagnostic records a directive the host model refused, together with the
// underlying rejection. It is accumulated, never thrown: one bad directive
// must not abort the rest of the batch.
type Diagnostic struct {
	Directive RenameDirective // The directive that could not be applied
	Err       error           // The host's rejection
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("could not apply suggestion: %s -> %s (%v)",
		d.Directive.OldName, d.Directive.NewName, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
