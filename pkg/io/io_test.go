package io

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/phase"
)

func TestReadMatrix(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"booleans", `{"junction":"C","type":"traffic_light","foes":[[false,true,false],[true,false,false],[false,false,false]]}`},
		{"numbers", `{"junction":"C","type":"traffic_light","foes":[[0,1,0],[1,0,0],[0,0,0]]}`},
		{"strings", `{"junction":"C","type":"traffic_light","foes":["010","100","000"]}`},
		{"mixed rows", `{"junction":"C","type":"traffic_light","foes":["010",[true,false,false],[0,0,0]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ReadMatrix(strings.NewReader(tt.json))
			if err != nil {
				t.Fatalf("ReadMatrix() error: %v", err)
			}
			if doc.Junction.ID != "C" || doc.Junction.Type != "traffic_light" {
				t.Errorf("Junction = %+v", doc.Junction)
			}
			if got := doc.Matrix.Strings(); !slices.Equal(got, []string{"010", "100", "000"}) {
				t.Errorf("Strings() = %v", got)
			}
		})
	}
}

func TestReadMatrix_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
		code errors.Code
	}{
		{"not json", `{"foes":`, errors.ErrCodeInvalidMatrix},
		{"missing foes", `{"junction":"C"}`, errors.ErrCodeInvalidMatrix},
		{"non-boolean entry", `{"foes":[[false,"yes"],[false,false]]}`, errors.ErrCodeInvalidMatrix},
		{"number out of range", `{"foes":[[0,2],[2,0]]}`, errors.ErrCodeInvalidMatrix},
		{"bad string", `{"foes":["0a","00"]}`, errors.ErrCodeInvalidMatrix},
		{"row is object", `{"foes":[{"a":1}]}`, errors.ErrCodeInvalidMatrix},
		{"ragged", `{"foes":[[false,false],[false]]}`, errors.ErrCodeInvalidMatrix},
		{"asymmetric", `{"foes":[[false,true],[false,false]]}`, errors.ErrCodeAsymmetricMatrix},
		{"bad junction", `{"junction":"a b","foes":[]}`, errors.ErrCodeInvalidJunction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMatrix(strings.NewReader(tt.json))
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadMatrix() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadMatrix_Symmetrize(t *testing.T) {
	doc, err := ReadMatrix(strings.NewReader(`{"foes":[[false,true],[false,false]]}`), conflict.WithSymmetrize())
	if err != nil {
		t.Fatalf("ReadMatrix() error: %v", err)
	}
	if !doc.Matrix.Conflicts(1, 0) {
		t.Error("symmetrized matrix should report 1-0 conflict")
	}
}

func TestReadMatrix_Empty(t *testing.T) {
	doc, err := ReadMatrix(strings.NewReader(`{"foes":[]}`))
	if err != nil {
		t.Fatalf("ReadMatrix() error: %v", err)
	}
	if doc.Matrix.Size() != 0 {
		t.Errorf("Size() = %d, want 0", doc.Matrix.Size())
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	m, _ := conflict.FromStrings([]string{"0110", "1000", "1000", "0000"})
	j := phase.Junction{ID: "J2", Type: "traffic_light"}

	var buf bytes.Buffer
	if err := WriteMatrix(&buf, j, m); err != nil {
		t.Fatalf("WriteMatrix() error: %v", err)
	}
	doc, err := ReadMatrix(&buf)
	if err != nil {
		t.Fatalf("ReadMatrix() error: %v", err)
	}
	if !doc.Matrix.Equal(m) || doc.Junction != j {
		t.Errorf("round trip changed the document: %+v %v", doc.Junction, doc.Matrix.Strings())
	}
}

func TestResultRoundTrip(t *testing.T) {
	m, _ := conflict.FromStrings([]string{"010", "100", "000"})
	r, _ := phase.Enumerate(m, phase.WithJunction(phase.Junction{ID: "C", Type: "priority"}))

	path := filepath.Join(t.TempDir(), "phases.json")
	if err := ExportResult(r, path); err != nil {
		t.Fatalf("ExportResult() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := ReadResult(f)
	if err != nil {
		t.Fatalf("ReadResult() error: %v", err)
	}
	if got.N != 3 || !slices.EqualFunc(got.Phases, r.Phases, slices.Equal) {
		t.Errorf("ReadResult() = %+v, want %+v", got, r)
	}
	if len(got.Diagnostics) != 1 {
		t.Errorf("Diagnostics = %v, want one entry", got.Diagnostics)
	}
	if err := phase.Verify(m, got); err != nil {
		t.Errorf("Verify() error: %v", err)
	}
}

func TestImportMatrix_Missing(t *testing.T) {
	_, err := ImportMatrix(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportMatrix() error = %v, want FILE_NOT_FOUND", err)
	}
}
