// Package render draws the conflict graph of a junction.
//
// Each connection is a node; two nodes are joined by a solid red edge when
// the connections are foes. Compatible pairs can be drawn as dashed grey
// edges, which makes cliques (safe phases) visible at a glance. A phase can
// be highlighted to check it against the matrix.
//
//	dot := render.ToDOT(m, render.Options{Highlight: phase.Phase{0, 2}})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [ToDOT] output is plain Graphviz source and can be processed with external
// tools. [RenderSVG] uses [github.com/goccy/go-graphviz] in-process with the
// circo layout, which places connections on a circle like the approaches of
// a junction.
package render
