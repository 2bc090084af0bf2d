// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

package program

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/marcohald/GhidraGPT/pkg/types"
)

// VariableSnapshot is the on-disk form of one parameter or local variable.
type VariableSnapshot struct {
	Name     string `json:"name" yaml:"name"`
	DataType string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Storage  string `json:"storage,omitempty" yaml:"storage,omitempty"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Snapshot is the on-disk form of one exported function: what the host's
// export script writes out and what the engine writes back after a pass.
type Snapshot struct {
	Function          string             `json:"function" yaml:"function"`
	EntryPoint        string             `json:"entry_point,omitempty" yaml:"entry_point,omitempty"`
	Signature         string             `json:"signature,omitempty" yaml:"signature,omitempty"`
	CallingConvention string             `json:"calling_convention,omitempty" yaml:"calling_convention,omitempty"`
	Decompiled        string             `json:"decompiled,omitempty" yaml:"decompiled,omitempty"`
	Parameters        []VariableSnapshot `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Locals            []VariableSnapshot `json:"locals,omitempty" yaml:"locals,omitempty"`
}

// LoadSnapshot reads a snapshot file. The format is chosen by extension:
// .yaml and .yml decode as YAML, everything else as JSON.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if isYAMLPath(path) {
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
		}
	}

	if snap.Function == "" {
		return nil, fmt.Errorf("snapshot %s has no function name", path)
	}
	return &snap, nil
}

// SaveSnapshot writes the snapshot to path atomically, in the format the
// extension implies. JSON output is indented so diffs stay readable.
func SaveSnapshot(path string, snap *Snapshot) error {
	var (
		data []byte
		err  error
	)
	if isYAMLPath(path) {
		data, err = yaml.Marshal(snap)
	} else {
		data, err = json.MarshalIndent(snap, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return atomicWrite(path, data)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Model builds the mutable function model from the snapshot.
func (s *Snapshot) Model() *Function {
	fn := &Function{
		name:              s.Function,
		entry:             s.EntryPoint,
		signature:         s.Signature,
		callingConvention: s.CallingConvention,
		decompiled:        s.Decompiled,
	}
	for _, p := range s.Parameters {
		fn.AddParameter(p.Name, p.DataType, p.Storage, types.ParseSourceType(p.Source))
	}
	for _, v := range s.Locals {
		fn.AddLocal(v.Name, v.DataType, v.Storage, types.ParseSourceType(v.Source))
	}
	return fn
}

// UpdateFrom copies current symbol names and provenance tags back from the
// model into the snapshot, position by position.
func (s *Snapshot) UpdateFrom(fn *Function) {
	for i := range s.Parameters {
		if i < len(fn.params) {
			s.Parameters[i].Name = fn.params[i].name
			s.Parameters[i].Source = fn.params[i].source.String()
		}
	}
	for i := range s.Locals {
		if i < len(fn.locals) {
			s.Locals[i].Name = fn.locals[i].name
			s.Locals[i].Source = fn.locals[i].source.String()
		}
	}
}

// atomicWrite writes data to a temp file in the same directory, then renames
// it to the target path. This prevents partial writes from corrupting files.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	// Preserve original file permissions if the file exists.
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, ".ghidragpt-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
