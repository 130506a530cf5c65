// Package signal maps safe phases to SUMO red/yellow/green state strings.
//
// A state string has one character per controlled connection, in connection
// index order. Members of a phase get a priority green 'G', everything else
// red 'r'. Switching between two states passes through a yellow state where
// every green of the outgoing state turns 'y'.
package signal

import (
	"strings"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/phase"
)

// Signal characters used by SUMO traffic light programs.
const (
	Red            = 'r'
	RedPriority    = 'R' // unused by SUMO but accepted in programs
	Yellow         = 'y'
	YellowPriority = 'Y'
	Green          = 'g' // green without priority, must yield
	GreenPriority  = 'G'
	GreenRight     = 's' // green right-turn arrow
	RedYellow      = 'u'
	OffBlinking    = 'o'
	OffNoSignal    = 'O'
)

const alphabet = "rRyYgGsuoO"

// State returns the state string for p over n connections.
// It returns errors.ErrCodeInvalidPhase if p names a connection outside
// [0, n).
func State(n int, p phase.Phase) (string, error) {
	buf := []byte(strings.Repeat("r", n))
	for _, c := range p {
		if c < 0 || c >= n {
			return "", errors.New(errors.ErrCodeInvalidPhase, "connection %d out of range for %d connections", c, n)
		}
		buf[c] = GreenPriority
	}
	return string(buf), nil
}

// States returns the state string of every phase in r, in result order.
func States(r *phase.Result) ([]string, error) {
	out := make([]string, 0, len(r.Phases))
	for _, p := range r.Phases {
		s, err := State(r.N, p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ToYellow turns every green ('G', 'g') of state into yellow ('y').
func ToYellow(state string) string {
	return strings.Map(func(r rune) rune {
		if r == GreenPriority || r == Green {
			return Yellow
		}
		return r
	}, state)
}

// Transition returns the sequence of states to apply when switching from cur
// to next: nothing if they are equal, otherwise the yellow form of cur
// followed by next.
func Transition(cur, next string) ([]string, error) {
	if len(cur) != len(next) {
		return nil, errors.New(errors.ErrCodeInvalidState,
			"state lengths differ: %d and %d", len(cur), len(next))
	}
	if cur == next {
		return nil, nil
	}
	return []string{ToYellow(cur), next}, nil
}

// Validate checks that state only uses SUMO signal characters.
func Validate(state string) error {
	if state == "" {
		return errors.New(errors.ErrCodeInvalidState, "state cannot be empty")
	}
	for i, r := range state {
		if !strings.ContainsRune(alphabet, r) {
			return errors.New(errors.ErrCodeInvalidState, "invalid signal %q at position %d", r, i)
		}
	}
	return nil
}

// Greens returns the connections that are green ('G' or 'g') in state, which
// is the phase the state displays.
func Greens(state string) phase.Phase {
	var p phase.Phase
	for i := 0; i < len(state); i++ {
		if state[i] == GreenPriority || state[i] == Green {
			p = append(p, i)
		}
	}
	return p
}

// Audit checks that the greens of state form a safe phase of m.
// It returns errors.ErrCodeInvalidState if the state length does not match
// the connection count or uses unknown signals, and
// errors.ErrCodeInvalidPhase naming the first conflicting pair otherwise.
func Audit(m *conflict.Matrix, state string) error {
	if err := Validate(state); err != nil {
		return err
	}
	if len(state) != m.Size() {
		return errors.New(errors.ErrCodeInvalidState,
			"state %q has %d signals, junction has %d connections", state, len(state), m.Size())
	}
	greens := Greens(state)
	for a, i := range greens {
		for _, j := range greens[a+1:] {
			if m.Conflicts(i, j) {
				return errors.New(errors.ErrCodeInvalidPhase,
					"state %q shows green on conflicting connections %d and %d", state, i, j)
			}
		}
	}
	return nil
}
