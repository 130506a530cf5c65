package conflict

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/safephase/pkg/errors"
)

// Matrix is an immutable, symmetric foe relation over n connections.
//
// The zero value is an empty relation with no connections.
type Matrix struct {
	n       int
	foes    []*bitset.BitSet // foes[i] holds j iff i and j conflict
	nonFoes []*bitset.BitSet // nonFoes[i] holds j != i iff i and j are compatible
}

// Option configures matrix construction.
type Option func(*options)

type options struct {
	symmetrize bool
}

// WithSymmetrize accepts asymmetric input and treats a conflict declared in
// either direction as a conflict in both.
func WithSymmetrize() Option {
	return func(o *options) { o.symmetrize = true }
}

// New builds a Matrix from boolean rows. rows[i][j] reports whether
// connections i and j conflict. The diagonal is ignored.
//
// New returns an error with code errors.ErrCodeInvalidMatrix if any row's
// length differs from len(rows), and errors.ErrCodeAsymmetricMatrix if
// rows[i][j] != rows[j][i] for some i != j (unless [WithSymmetrize] is given).
// A nil or empty rows slice yields a valid matrix with zero connections.
func New(rows [][]bool, opts ...Option) (*Matrix, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	n := len(rows)
	for i, row := range rows {
		if len(row) != n {
			return nil, errors.New(errors.ErrCodeInvalidMatrix,
				"row %d has %d columns, want %d (matrix must be square)", i, len(row), n)
		}
	}

	foes := make([]*bitset.BitSet, n)
	for i := range foes {
		foes[i] = bitset.New(uint(n))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := rows[i][j], rows[j][i]
			if a != b && !o.symmetrize {
				return nil, errors.New(errors.ErrCodeAsymmetricMatrix,
					"conflict between %d and %d is declared in one direction only", i, j)
			}
			if a || b {
				foes[i].Set(uint(j))
				foes[j].Set(uint(i))
			}
		}
	}
	return build(n, foes), nil
}

// FromStrings builds a Matrix from rows of '0' and '1' characters, where
// character j of row i reports whether i and j conflict.
//
// Any other character is rejected with errors.ErrCodeInvalidMatrix.
func FromStrings(rows []string, opts ...Option) (*Matrix, error) {
	bools, err := parseRows(rows, false)
	if err != nil {
		return nil, err
	}
	return New(bools, opts...)
}

// FromFoeStrings builds a Matrix from SUMO request foe strings.
//
// SUMO writes the foes attribute of a <request> with connection 0 as the
// rightmost character, so each row is reversed before parsing: for n = 3,
// the row "100" means the row's connection conflicts with connection 2.
func FromFoeStrings(rows []string, opts ...Option) (*Matrix, error) {
	bools, err := parseRows(rows, true)
	if err != nil {
		return nil, err
	}
	return New(bools, opts...)
}

func parseRows(rows []string, reversed bool) ([][]bool, error) {
	out := make([][]bool, len(rows))
	for i, row := range rows {
		bits := make([]bool, len(row))
		for j := 0; j < len(row); j++ {
			col := j
			if reversed {
				col = len(row) - 1 - j
			}
			switch row[j] {
			case '0':
			case '1':
				bits[col] = true
			default:
				return nil, errors.New(errors.ErrCodeInvalidMatrix,
					"row %d: invalid character %q at position %d (want '0' or '1')", i, row[j], j)
			}
		}
		out[i] = bits
	}
	return out, nil
}

// Independent returns a Matrix of n connections with no conflicts at all.
func Independent(n int) *Matrix {
	if n < 0 {
		n = 0
	}
	foes := make([]*bitset.BitSet, n)
	for i := range foes {
		foes[i] = bitset.New(uint(n))
	}
	return build(n, foes)
}

func build(n int, foes []*bitset.BitSet) *Matrix {
	nonFoes := make([]*bitset.BitSet, n)
	for i := 0; i < n; i++ {
		nf := bitset.New(uint(n))
		for j := 0; j < n; j++ {
			if j != i && !foes[i].Test(uint(j)) {
				nf.Set(uint(j))
			}
		}
		nonFoes[i] = nf
	}
	return &Matrix{n: n, foes: foes, nonFoes: nonFoes}
}

// Size returns the number of connections.
func (m *Matrix) Size() int { return m.n }

// Conflicts reports whether connections i and j conflict. It is always false
// for i == j and for indices outside [0, Size()).
func (m *Matrix) Conflicts(i, j int) bool {
	if i == j || !m.inRange(i) || !m.inRange(j) {
		return false
	}
	return m.foes[i].Test(uint(j))
}

// Foes returns a copy of the set of connections that conflict with i.
// It panics if i is out of range.
func (m *Matrix) Foes(i int) *bitset.BitSet {
	return m.foes[i].Clone()
}

// NonFoes returns a copy of NF(i): every connection j != i compatible with i.
// It panics if i is out of range.
func (m *Matrix) NonFoes(i int) *bitset.BitSet {
	return m.nonFoes[i].Clone()
}

// NonFoeIndices returns NF(i) as an ascending index slice.
func (m *Matrix) NonFoeIndices(i int) []int {
	return Indices(m.nonFoes[i])
}

// Degree returns the number of foes of connection i.
func (m *Matrix) Degree(i int) int {
	return int(m.foes[i].Count())
}

// Compatible reports whether every pair of connections in set is
// conflict-free. Indices out of range make the set incompatible.
func (m *Matrix) Compatible(set []int) bool {
	for a, i := range set {
		if !m.inRange(i) {
			return false
		}
		for _, j := range set[a+1:] {
			if m.Conflicts(i, j) {
				return false
			}
		}
	}
	return true
}

// Rows returns the relation as a freshly allocated boolean matrix with a
// false diagonal.
func (m *Matrix) Rows() [][]bool {
	rows := make([][]bool, m.n)
	for i := range rows {
		row := make([]bool, m.n)
		for j := range row {
			row[j] = m.foes[i].Test(uint(j))
		}
		rows[i] = row
	}
	return rows
}

// Strings returns the relation as '0'/'1' rows, column j is connection j.
func (m *Matrix) Strings() []string {
	out := make([]string, m.n)
	var b strings.Builder
	for i := range out {
		b.Reset()
		for j := 0; j < m.n; j++ {
			if m.foes[i].Test(uint(j)) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		out[i] = b.String()
	}
	return out
}

// Canonical returns a compact, deterministic encoding of the relation:
// the connection count followed by the upper triangle packed row by row.
// Two matrices are equal iff their canonical encodings are equal.
func (m *Matrix) Canonical() []byte {
	buf := binary.AppendUvarint(nil, uint64(m.n))
	var cur byte
	var bit uint
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if m.foes[i].Test(uint(j)) {
				cur |= 1 << bit
			}
			bit++
			if bit == 8 {
				buf = append(buf, cur)
				cur, bit = 0, 0
			}
		}
	}
	if bit > 0 {
		buf = append(buf, cur)
	}
	return buf
}

// Equal reports whether m and o describe the same relation.
func (m *Matrix) Equal(o *Matrix) bool {
	return slices.Equal(m.Canonical(), o.Canonical())
}

func (m *Matrix) inRange(i int) bool { return i >= 0 && i < m.n }
