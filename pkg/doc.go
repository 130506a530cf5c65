// Package pkg provides the libraries behind safephase, the safe-phase
// enumerator for signalized junctions.
//
// # Overview
//
// A safe phase is a set of connections (traffic movements) of a junction
// that may show green at the same time because no two of them are foes.
// safephase reads the pairwise foe relation of a junction and enumerates
// every safe phase, level by level, from the singletons up to the largest
// compatible sets.
//
// The pkg directory is organized into three areas:
//
//  1. Domain: [conflict] (foe matrices), [phase] (the enumerator) and
//     [signal] (SUMO signal state strings)
//  2. Input/output: [netxml] (SUMO .net.xml networks), [io] (matrix and
//     result JSON) and [render] (conflict graphs as DOT and SVG)
//  3. Infrastructure: [pipeline] (load, cache and enumerate), [cache],
//     [catalog], [observability], [errors] and [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	SUMO network (.net.xml) or matrix JSON
//	         ↓
//	    [netxml] / [io] package (parse, build the foe matrix)
//	         ↓
//	    [conflict] package (validated, symmetric matrix)
//	         ↓
//	    [phase] package (enumerate safe phases)
//	         ↓
//	    [signal] / [render] / [io] (state strings, graphs, JSON)
//
// [pipeline.Runner] ties the steps together and caches results keyed by
// the canonical encoding of the matrix.
//
// # Quick Start
//
//	m, err := conflict.FromStrings([]string{
//	    "0101",
//	    "1010",
//	    "0101",
//	    "1010",
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := phase.Enumerate(m)
//	if err != nil {
//	    return err
//	}
//	for _, p := range res.Phases {
//	    state, _ := signal.State(res.N, p)
//	    fmt.Println(p, state)
//	}
//
// [conflict]: github.com/matzehuels/safephase/pkg/conflict
// [phase]: github.com/matzehuels/safephase/pkg/phase
// [signal]: github.com/matzehuels/safephase/pkg/signal
// [netxml]: github.com/matzehuels/safephase/pkg/netxml
// [io]: github.com/matzehuels/safephase/pkg/io
// [render]: github.com/matzehuels/safephase/pkg/render
// [pipeline]: github.com/matzehuels/safephase/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/safephase/pkg/pipeline#Runner
// [cache]: github.com/matzehuels/safephase/pkg/cache
// [catalog]: github.com/matzehuels/safephase/pkg/catalog
// [observability]: github.com/matzehuels/safephase/pkg/observability
// [errors]: github.com/matzehuels/safephase/pkg/errors
// [buildinfo]: github.com/matzehuels/safephase/pkg/buildinfo
package pkg
