package phase

import (
	"context"
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/errors"
)

// Option configures [Enumerate].
type Option func(*config)

type config struct {
	ctx       context.Context
	junction  Junction
	maxPhases int
}

// WithJunction declares the junction being analysed. A type other than
// [TypeTrafficLight] adds a [DiagJunctionNotSignalized] diagnostic.
func WithJunction(j Junction) Option {
	return func(c *config) { c.junction = j }
}

// WithMaxPhases aborts the enumeration with errors.ErrCodeLimitExceeded once
// more than limit phases would be produced. A limit <= 0 means unlimited.
func WithMaxPhases(limit int) Option {
	return func(c *config) { c.maxPhases = limit }
}

// WithContext aborts the enumeration with errors.ErrCodeTimeout once ctx is
// done. The context is checked between levels and periodically while a level
// is being extended.
func WithContext(ctx context.Context) Option {
	return func(c *config) { c.ctx = ctx }
}

// checkEvery is the number of extended phases between context checks.
const checkEvery = 1024

// candidate is a phase of the current level together with its frontier.
type candidate struct {
	members  *bitset.BitSet
	frontier *bitset.BitSet
	phase    Phase
}

// Enumerate computes the safe-phase collection of m.
//
// The returned Result holds every singleton, every compatible pair and every
// larger phase reachable by extending a phase with a member of its frontier,
// without duplicates. See the package documentation for ordering guarantees.
//
// A nil matrix is rejected with errors.ErrCodeInvalidMatrix.
func Enumerate(m *conflict.Matrix, opts ...Option) (*Result, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidMatrix, "nil conflict matrix")
	}
	cfg := config{ctx: context.Background()}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := m.Size()
	res := &Result{Junction: cfg.junction, N: n, Phases: []Phase{}}
	if !cfg.junction.Signalized() {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Code: DiagJunctionNotSignalized,
			Message: fmt.Sprintf("junction %q is of type %q, not %q; it is not controlled by a traffic light",
				cfg.junction.ID, cfg.junction.Type, TypeTrafficLight),
		})
	}

	nonFoes := make([]*bitset.BitSet, n)
	for i := range nonFoes {
		nonFoes[i] = m.NonFoes(i)
	}

	emit := func(level []candidate) error {
		if cfg.maxPhases > 0 && len(res.Phases)+len(level) > cfg.maxPhases {
			return errors.New(errors.ErrCodeLimitExceeded,
				"more than %d safe phases (reached %d at size %d)",
				cfg.maxPhases, len(res.Phases)+len(level), len(level[0].phase))
		}
		for _, c := range level {
			res.Phases = append(res.Phases, c.phase)
		}
		return nil
	}

	singletons := make([]candidate, n)
	for i := range singletons {
		singletons[i] = candidate{phase: Phase{i}}
	}
	if n > 0 {
		if err := emit(singletons); err != nil {
			return nil, err
		}
	}

	current := pairs(n, nonFoes)
	for len(current) > 0 {
		if err := emit(current); err != nil {
			return nil, err
		}
		var err error
		if current, err = extend(cfg.ctx, current, nonFoes); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func aborted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, err, "enumeration aborted")
	}
	return nil
}

// pairs builds level 2: {i, j} for every j in NF(i) with j > i.
func pairs(n int, nonFoes []*bitset.BitSet) []candidate {
	var level []candidate
	for i := 0; i < n; i++ {
		for j, ok := nonFoes[i].NextSet(uint(i + 1)); ok; j, ok = nonFoes[i].NextSet(j + 1) {
			level = append(level, candidate{
				members:  conflict.SetOf(n, i, int(j)),
				frontier: nonFoes[i].Intersection(nonFoes[j]),
				phase:    Phase{i, int(j)},
			})
		}
	}
	return level
}

// extend builds the next level from the current one. Each phase is extended
// by every connection of its frontier; candidates reached more than once are
// kept once. The frontier of P ∪ {c} is Fr(P) ∩ NF(c).
func extend(ctx context.Context, current []candidate, nonFoes []*bitset.BitSet) ([]candidate, error) {
	if err := aborted(ctx); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var next []candidate
	for i, p := range current {
		if i%checkEvery == checkEvery-1 {
			if err := aborted(ctx); err != nil {
				return nil, err
			}
		}
		for c, ok := p.frontier.NextSet(0); ok; c, ok = p.frontier.NextSet(c + 1) {
			members := p.members.Clone().Set(c)
			key := conflict.Key(members)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			next = append(next, candidate{
				members:  members,
				frontier: p.frontier.Intersection(nonFoes[c]),
				phase:    Phase(conflict.Indices(members)),
			})
		}
	}
	slices.SortFunc(next, func(a, b candidate) int {
		return slices.Compare(a.phase, b.phase)
	})
	return next, nil
}
