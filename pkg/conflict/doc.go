// Package conflict models the pairwise foe relation between the signal
// controlled connections of one junction.
//
// # Overview
//
// A junction with n controlled connections (turning movements) is described
// by an n × n boolean matrix F where F[i][j] is true iff connections i and j
// cannot show green at the same time. [Matrix] stores that relation as
// immutable bitset rows:
//
//	m, err := conflict.New([][]bool{
//	    {false, true, false},
//	    {true, false, false},
//	    {false, false, false},
//	})
//	m.Conflicts(0, 1) // true
//	m.NonFoes(2)      // {0, 1}
//
// # Diagonal
//
// The diagonal of the input is ignored. A connection is never its own foe,
// whatever the source data says, so it always remains eligible for its own
// singleton phase.
//
// # Validation
//
// Constructors reject ragged or non-square input with
// errors.ErrCodeInvalidMatrix and asymmetric input with
// errors.ErrCodeAsymmetricMatrix. Pass [WithSymmetrize] to accept one-sided
// declarations and close them under symmetry instead.
//
// # Constructors
//
//   - [New]: rows of booleans
//   - [FromStrings]: rows of '0'/'1' characters, column j is connection j
//   - [FromFoeStrings]: SUMO request foes, where the last character is connection 0
//   - [Independent]: n connections that never conflict
//
// # Concurrency
//
// A Matrix is never mutated after construction and is safe for concurrent
// use. Accessors that return sets return copies.
package conflict
