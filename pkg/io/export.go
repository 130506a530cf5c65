package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/phase"
)

// WriteResult encodes r as indented JSON to w.
func WriteResult(w io.Writer, r *phase.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ExportResult writes r as JSON to the file at path, creating or truncating
// it.
func ExportResult(r *phase.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteResult(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteMatrix encodes m in the matrix document format, using '0'/'1'
// strings for the rows.
func WriteMatrix(w io.Writer, j phase.Junction, m *conflict.Matrix) error {
	data := struct {
		Junction string   `json:"junction,omitempty"`
		Type     string   `json:"type,omitempty"`
		Foes     []string `json:"foes"`
	}{j.ID, j.Type, m.Strings()}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
