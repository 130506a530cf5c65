package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/phase"
)

// MatrixDocument is a decoded matrix file together with its junction
// declaration.
type MatrixDocument struct {
	Junction phase.Junction
	Matrix   *conflict.Matrix
}

type matrixJSON struct {
	Junction string            `json:"junction,omitempty"`
	Type     string            `json:"type,omitempty"`
	Foes     []json.RawMessage `json:"foes"`
}

// ReadMatrix decodes a matrix document from r. ReadMatrix does not close r.
func ReadMatrix(r io.Reader, opts ...conflict.Option) (*MatrixDocument, error) {
	var data matrixJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMatrix, err, "decode matrix")
	}
	if data.Foes == nil {
		return nil, errors.New(errors.ErrCodeInvalidMatrix, "missing \"foes\" field")
	}
	if data.Junction != "" {
		if err := errors.ValidateJunctionID(data.Junction); err != nil {
			return nil, err
		}
	}

	rows := make([][]bool, len(data.Foes))
	for i, raw := range data.Foes {
		row, err := decodeRow(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMatrix, err, "row %d", i)
		}
		rows[i] = row
	}

	m, err := conflict.New(rows, opts...)
	if err != nil {
		return nil, err
	}
	return &MatrixDocument{
		Junction: phase.Junction{ID: data.Junction, Type: data.Type},
		Matrix:   m,
	}, nil
}

// decodeRow accepts "0101" or [false, true, ...] or [0, 1, ...].
func decodeRow(raw json.RawMessage) ([]bool, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		row := make([]bool, len(s))
		for j := 0; j < len(s); j++ {
			switch s[j] {
			case '0':
			case '1':
				row[j] = true
			default:
				return nil, fmt.Errorf("invalid character %q at column %d", s[j], j)
			}
		}
		return row, nil
	}

	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("row must be a string or an array: %w", err)
	}
	row := make([]bool, len(entries))
	for j, e := range entries {
		switch v := e.(type) {
		case bool:
			row[j] = v
		case float64:
			if v != 0 && v != 1 {
				return nil, fmt.Errorf("column %d: number %v is not 0 or 1", j, v)
			}
			row[j] = v == 1
		default:
			return nil, fmt.Errorf("column %d: %v is not a boolean", j, e)
		}
	}
	return row, nil
}

// ImportMatrix reads the matrix document at path.
func ImportMatrix(path string, opts ...conflict.Option) (*MatrixDocument, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadMatrix(f, opts...)
}

// ReadResult decodes a result document from r.
func ReadResult(r io.Reader) (*phase.Result, error) {
	var res phase.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode result")
	}
	if res.Phases == nil {
		res.Phases = []phase.Phase{}
	}
	return &res, nil
}
