package conflict

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
)

// Indices returns the members of b in ascending order.
func Indices(b *bitset.BitSet) []int {
	out := make([]int, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// SetOf returns a bitset sized for n connections holding the given indices.
func SetOf(n int, indices ...int) *bitset.BitSet {
	b := bitset.New(uint(n))
	for _, i := range indices {
		b.Set(uint(i))
	}
	return b
}

// Key returns a canonical map key for b. Two sets have the same key iff they
// hold the same members, regardless of their allocated length.
func Key(b *bitset.BitSet) string {
	var words []uint64
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		w := int(i / 64)
		for len(words) <= w {
			words = append(words, 0)
		}
		words[w] |= 1 << (i % 64)
	}
	buf := make([]byte, 0, 8*len(words))
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return string(buf)
}
