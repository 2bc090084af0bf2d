// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package program provides the in-memory function model the suggestion engine
// operates on: a headless stand-in for the host's program database, built
// from exported function snapshots and written back after a pass.
package program

import (
	"fmt"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

// Variable is one parameter or local variable of a function. It implements
// types.Symbol; renames go through SetName so host rules apply.
type Variable struct {
	fn       *Function
	name     string
	dataType string
	storage  string
	source   types.SourceType
}

// Name returns the variable's current name.
func (v *Variable) Name() string { return v.name }

// Source returns the provenance tag of the current name.
func (v *Variable) Source() types.SourceType { return v.source }

// DataType returns the variable's declared data type.
func (v *Variable) DataType() string { return v.dataType }

// Storage returns the variable's storage location (register or stack offset).
func (v *Variable) Storage() string { return v.storage }

// SetName renames the variable in place. The host rules here mirror the
// program database: the name must be non-empty and free of whitespace and
// control characters (types.ErrInvalidName), and must not collide with any
// other symbol in the same function (types.ErrDuplicateName). Setting the
// current name again is a no-op success. On success the provenance tag is
// replaced by the one passed in.
func (v *Variable) SetName(name string, source types.SourceType) error {
	if name == v.name {
		return nil
	}
	if !acceptableName(name) {
		return fmt.Errorf("%w: %q", types.ErrInvalidName, name)
	}
	if v.fn != nil && v.fn.hasSymbolNamed(name) {
		return fmt.Errorf("%w: %q is already bound in %s", types.ErrDuplicateName, name, v.fn.name)
	}
	v.name = name
	v.source = source
	return nil
}

// acceptableName applies the host's own naming rules, which are looser than
// the C identifier grammar: anything printable without whitespace goes.
func acceptableName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] <= ' ' || name[i] == 0x7f {
			return false
		}
	}
	return true
}

// Function is a single decompiled function: display name, entry point,
// signature, decompiled body, and its parameter and local-variable symbols.
// It implements types.FunctionHandle.
type Function struct {
	name              string
	entry             string
	signature         string
	callingConvention string
	decompiled        string
	params            []*Variable
	locals            []*Variable
}

// NewFunction creates an empty function model with the given display name.
func NewFunction(name string) *Function {
	return &Function{name: name}
}

// Name returns the function's display name.
func (f *Function) Name() string { return f.name }

// EntryPoint returns the function's entry address as exported by the host.
func (f *Function) EntryPoint() string { return f.entry }

// Signature returns the function's prototype string.
func (f *Function) Signature() string { return f.signature }

// CallingConvention returns the function's calling convention name.
func (f *Function) CallingConvention() string { return f.callingConvention }

// Decompiled returns the decompiler's source text for the function body.
func (f *Function) Decompiled() string { return f.decompiled }

// AddParameter appends a parameter symbol and returns its handle.
func (f *Function) AddParameter(name, dataType, storage string, source types.SourceType) *Variable {
	v := &Variable{fn: f, name: name, dataType: dataType, storage: storage, source: source}
	f.params = append(f.params, v)
	return v
}

// AddLocal appends a local-variable symbol and returns its handle.
func (f *Function) AddLocal(name, dataType, storage string, source types.SourceType) *Variable {
	v := &Variable{fn: f, name: name, dataType: dataType, storage: storage, source: source}
	f.locals = append(f.locals, v)
	return v
}

// Parameters returns the function's parameters as symbol handles. The slice
// is rebuilt on every call, so names changed through previously returned
// handles are always current.
func (f *Function) Parameters() []types.Symbol {
	syms := make([]types.Symbol, len(f.params))
	for i, p := range f.params {
		syms[i] = p
	}
	return syms
}

// LocalVariables returns the function's local variables as symbol handles,
// rebuilt on every call like Parameters.
func (f *Function) LocalVariables() []types.Symbol {
	syms := make([]types.Symbol, len(f.locals))
	for i, v := range f.locals {
		syms[i] = v
	}
	return syms
}

// hasSymbolNamed reports whether any parameter or local currently bears name.
func (f *Function) hasSymbolNamed(name string) bool {
	for _, p := range f.params {
		if p.name == name {
			return true
		}
	}
	for _, v := range f.locals {
		if v.name == name {
			return true
		}
	}
	return false
}

// Verify interface compliance at compile time.
var (
	_ types.Symbol         = (*Variable)(nil)
	_ types.FunctionHandle = (*Function)(nil)
)
