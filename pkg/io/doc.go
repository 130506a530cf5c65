// Package io provides JSON import and export for conflict matrices and
// safe-phase results.
//
// # Matrix Format
//
// A matrix document names the junction and lists its foe rows:
//
//	{
//	  "junction": "C",
//	  "type": "traffic_light",
//	  "foes": [
//	    [false, true, false],
//	    [true, false, false],
//	    [false, false, false]
//	  ]
//	}
//
// Each row is either an array of booleans (0 and 1 are accepted as well) or
// a string of '0'/'1' characters such as "010". Column j of row i reports
// whether connections i and j conflict; the diagonal is ignored. Any other
// entry, a ragged row, or an asymmetric relation is rejected with
// errors.ErrCodeInvalidMatrix or errors.ErrCodeAsymmetricMatrix.
//
// The junction and type fields are optional. A declared type other than
// "traffic_light" is passed on to the enumerator, which attaches a warning.
//
// # Result Format
//
//	{
//	  "junction": {"id": "C", "type": "traffic_light"},
//	  "n": 3,
//	  "phases": [[0], [1], [2], [0, 2], [1, 2]],
//	  "diagnostics": []
//	}
//
// Use [WriteResult] / [ExportResult] to produce it and [ReadResult] to read
// it back.
package io
