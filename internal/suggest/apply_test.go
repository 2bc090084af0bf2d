// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcohald/GhidraGPT/internal/program"
	"github.com/marcohald/GhidraGPT/pkg/types"
)

func TestApply_RenamesLocalAndParam(t *testing.T) {
	fn := program.NewFunction("process_input")
	fn.AddParameter("param_1", "char *", "RDI", types.SourceDefault)
	local := fn.AddLocal("uVar1", "uint", "Stack[-0x10]", types.SourceDefault)

	applier := &Applier{}
	result := applier.Apply(fn, []types.RenameDirective{
		{OldName: "uVar1", NewName: "byteCount", Reason: "tracks bytes consumed"},
		{OldName: "param_1", NewName: "inputPath"},
	})

	assert.Equal(t, 2, result.Applied)
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, "byteCount", local.Name())
	assert.Equal(t, types.SourceDefault, local.Source(), "name-source tag passes through unchanged")
	assert.Equal(t, "inputPath", fn.Parameters()[0].Name())
}

func TestApply_LocalShadowsParam(t *testing.T) {
	fn := program.NewFunction("shadow")
	param := fn.AddParameter("value", "int", "EDI", types.SourceDefault)
	local := fn.AddLocal("value", "int", "Stack[-0x4]", types.SourceDefault)

	applier := &Applier{}
	result := applier.Apply(fn, []types.RenameDirective{
		{OldName: "value", NewName: "inputValue"},
	})

	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, "inputValue", local.Name())
	assert.Equal(t, "value", param.Name(), "param must not be touched when a local matches first")
}

func TestApply_MissingOldNameIsSkipped(t *testing.T) {
	fn := program.NewFunction("lookup")
	fn.AddLocal("uVar1", "uint", "", types.SourceDefault)

	applier := &Applier{}
	result := applier.Apply(fn, []types.RenameDirective{
		{OldName: "doesNotExist", NewName: "whatever"},
		{OldName: "uVar1", NewName: "count"},
	})

	assert.Equal(t, 1, result.Applied)
	assert.Empty(t, result.Diagnostics, "a missing symbol is not an error")
	assert.Equal(t, []DirectiveStatus{StatusSkipped, StatusApplied}, result.Statuses)
}

func TestApply_RejectionBecomesDiagnostic(t *testing.T) {
	fn := program.NewFunction("collide")
	fn.AddParameter("dest", "void *", "RDI", types.SourceUserDefined)
	fn.AddLocal("uVar1", "uint", "", types.SourceDefault)
	fn.AddLocal("uVar2", "uint", "", types.SourceDefault)

	applier := &Applier{}
	result := applier.Apply(fn, []types.RenameDirective{
		{OldName: "uVar1", NewName: "dest", Reason: "copy target"},
		{OldName: "uVar2", NewName: "srcLen"},
	})

	assert.Equal(t, 1, result.Applied)
	require.Len(t, result.Diagnostics, 1)
	assert.ErrorIs(t, result.Diagnostics[0], types.ErrDuplicateName)
	assert.Equal(t, "uVar1", result.Diagnostics[0].Directive.OldName)
	assert.Equal(t, []DirectiveStatus{StatusRejected, StatusApplied}, result.Statuses)
	assert.Equal(t, "srcLen", fn.LocalVariables()[1].Name(), "later directives still run after a rejection")
}

func TestApply_SeesEarlierRenames(t *testing.T) {
	fn := program.NewFunction("chain")
	fn.AddLocal("a", "int", "", types.SourceDefault)

	applier := &Applier{}
	result := applier.Apply(fn, []types.RenameDirective{
		{OldName: "a", NewName: "x"},
		{OldName: "x", NewName: "finalName"},
	})

	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, "finalName", fn.LocalVariables()[0].Name())
}

func TestApply_SecondPassIsNoop(t *testing.T) {
	fn := program.NewFunction("twice")
	fn.AddParameter("param_1", "char *", "RDI", types.SourceDefault)
	fn.AddLocal("uVar1", "uint", "", types.SourceDefault)

	directives := []types.RenameDirective{
		{OldName: "uVar1", NewName: "byteCount"},
		{OldName: "param_1", NewName: "inputPath"},
	}

	applier := &Applier{}
	first := applier.Apply(fn, directives)
	second := applier.Apply(fn, directives)

	assert.Equal(t, 2, first.Applied)
	assert.Equal(t, 0, second.Applied, "no symbol still bears any old name")
	assert.Empty(t, second.Diagnostics)
}

func TestApply_AppliedNeverExceedsDirectives(t *testing.T) {
	fn := program.NewFunction("bound")
	fn.AddLocal("a", "int", "", types.SourceDefault)
	fn.AddLocal("b", "int", "", types.SourceDefault)

	directives := []types.RenameDirective{
		{OldName: "a", NewName: "first"},
		{OldName: "missing", NewName: "second"},
		{OldName: "b", NewName: "third"},
	}

	applier := &Applier{}
	result := applier.Apply(fn, directives)

	assert.LessOrEqual(t, result.Applied, len(directives))
	assert.Equal(t, 2, result.Applied)
}

func TestApply_EmptyDirectives(t *testing.T) {
	fn := program.NewFunction("noop")
	fn.AddLocal("a", "int", "", types.SourceDefault)

	applier := &Applier{}
	result := applier.Apply(fn, nil)

	assert.Equal(t, 0, result.Applied)
	assert.Empty(t, result.Diagnostics)
}

func TestApply_EndToEndWithParse(t *testing.T) {
	fn := program.NewFunction("FUN_00401560")
	fn.AddParameter("param_1", "char *", "RDI", types.SourceDefault)
	fn.AddParameter("param_2", "int", "ESI", types.SourceDefault)
	fn.AddLocal("uVar1", "uint", "Stack[-0x10]", types.SourceDefault)
	fn.AddLocal("local_c", "int", "Stack[-0xc]", types.SourceDefault)

	response := `Looking at the decompiled code, these names would be clearer:

param_1 -> filename: passed to fopen on the first line
param_2 -> flags
uVar1 -> bytesRead: accumulates the fread return values
local_c -> while: loop construct
pcVar3 -> cursor: walks the buffer

Hope that helps.`

	directives := Parse(response)
	require.Len(t, directives, 4, "the keyword suggestion is dropped at parse time")

	applier := &Applier{}
	result := applier.Apply(fn, directives)

	assert.Equal(t, 3, result.Applied, "pcVar3 does not exist in the function")
	assert.Empty(t, result.Diagnostics)
	assert.Equal(t, StatusSkipped, result.Statuses[3])
	assert.Equal(t, "filename", fn.Parameters()[0].Name())
	assert.Equal(t, "flags", fn.Parameters()[1].Name())
	assert.Equal(t, "bytesRead", fn.LocalVariables()[0].Name())
	assert.Equal(t, "local_c", fn.LocalVariables()[1].Name())
}
