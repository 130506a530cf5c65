package phase

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/errors"
)

// TypeTrafficLight is the SUMO junction type of signal-controlled junctions.
const TypeTrafficLight = "traffic_light"

// DiagJunctionNotSignalized marks a junction whose declared type is not
// [TypeTrafficLight].
const DiagJunctionNotSignalized = "junction-not-signalized"

// Phase is a safe phase: an ascending list of connection indices.
type Phase []int

// String formats the phase as "[0 2 3]".
func (p Phase) String() string {
	return fmt.Sprint([]int(p))
}

// Key returns a canonical string key for the phase ("0,2,3").
// The phase must already be sorted.
func (p Phase) Key() string {
	var b strings.Builder
	for i, c := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(c))
	}
	return b.String()
}

// Contains reports whether connection c is part of the phase.
func (p Phase) Contains(c int) bool {
	_, ok := slices.BinarySearch(p, c)
	return ok
}

// Junction declares which junction a matrix belongs to.
type Junction struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
}

// Signalized reports whether the junction is declared as signal-controlled.
// An undeclared type is treated as signal-controlled.
func (j Junction) Signalized() bool {
	return j.Type == "" || j.Type == TypeTrafficLight
}

// Diagnostic is a non-fatal advisory attached to a [Result].
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result holds the outcome of one enumeration.
type Result struct {
	Junction    Junction     `json:"junction"`
	N           int          `json:"n"`
	Phases      []Phase      `json:"phases"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Levels groups the phases by size. Levels()[k-1] holds the phases of size k.
func (r *Result) Levels() [][]Phase {
	var levels [][]Phase
	for _, p := range r.Phases {
		for len(levels) < len(p) {
			levels = append(levels, nil)
		}
		levels[len(p)-1] = append(levels[len(p)-1], p)
	}
	return levels
}

// Largest returns the size of the largest phase, or 0 if there is none.
func (r *Result) Largest() int {
	largest := 0
	for _, p := range r.Phases {
		largest = max(largest, len(p))
	}
	return largest
}

// Maximal returns the phases that are not contained in any larger phase of
// the result, in result order.
func (r *Result) Maximal() []Phase {
	covered := make(map[string]bool)
	for _, p := range r.Phases {
		if len(p) < 2 {
			continue
		}
		sub := make(Phase, 0, len(p)-1)
		for skip := range p {
			sub = sub[:0]
			sub = append(sub, p[:skip]...)
			sub = append(sub, p[skip+1:]...)
			covered[sub.Key()] = true
		}
	}

	var out []Phase
	for _, p := range r.Phases {
		if !covered[p.Key()] {
			out = append(out, p)
		}
	}
	return out
}

// Verify checks that r is the safe-phase collection of m: every phase is
// non-empty, sorted, within range, pairwise conflict-free and unique, every
// connection has its singleton, and every phase that can be extended by a
// connection compatible with all its members is extended. It returns an error
// with code errors.ErrCodeInvalidPhase describing the first violation.
func Verify(m *conflict.Matrix, r *Result) error {
	if r.N != m.Size() {
		return errors.New(errors.ErrCodeInvalidPhase, "result has %d connections, matrix has %d", r.N, m.Size())
	}
	seen := make(map[string]bool, len(r.Phases))
	for _, p := range r.Phases {
		if len(p) == 0 {
			return errors.New(errors.ErrCodeInvalidPhase, "empty phase")
		}
		if !slices.IsSorted(p) {
			return errors.New(errors.ErrCodeInvalidPhase, "phase %v is not sorted", p)
		}
		if !m.Compatible(p) {
			return errors.New(errors.ErrCodeInvalidPhase, "phase %v contains conflicting connections", p)
		}
		key := p.Key()
		if seen[key] {
			return errors.New(errors.ErrCodeInvalidPhase, "duplicate phase %v", p)
		}
		seen[key] = true
	}

	for i := range r.N {
		if !seen[Phase{i}.Key()] {
			return errors.New(errors.ErrCodeInvalidPhase, "missing singleton [%d]", i)
		}
	}
	// With all singletons present, closing every phase under compatible
	// extension yields every conflict-free subset.
	for _, p := range r.Phases {
		common := m.NonFoes(p[0])
		for _, c := range p[1:] {
			common.InPlaceIntersection(m.NonFoes(c))
		}
		for c, ok := common.NextSet(0); ok; c, ok = common.NextSet(c + 1) {
			ext := append(slices.Clone(p), int(c))
			slices.Sort(ext)
			if !seen[ext.Key()] {
				return errors.New(errors.ErrCodeInvalidPhase, "phase %v is missing its extension %v", p, ext)
			}
		}
	}
	return nil
}
