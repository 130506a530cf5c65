package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/phase"
)

// Options configures conflict graph rendering.
type Options struct {
	// Title is drawn above the graph, typically the junction ID.
	Title string

	// Labels names the connections. Missing entries fall back to the index.
	Labels []string

	// Highlight fills the members of a phase green.
	Highlight phase.Phase

	// ShowCompatible draws dashed edges between compatible connections.
	ShowCompatible bool
}

// ToDOT converts a conflict matrix to undirected Graphviz DOT source.
func ToDOT(m *conflict.Matrix, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph conflicts {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	n := m.Size()
	for i := range n {
		attrs := []string{fmt.Sprintf("label=%q", label(opts.Labels, i))}
		if opts.Highlight.Contains(i) {
			attrs = append(attrs, "fillcolor=palegreen", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  c%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i := range n {
		for j := i + 1; j < n; j++ {
			switch {
			case m.Conflicts(i, j):
				fmt.Fprintf(&buf, "  c%d -- c%d [color=red];\n", i, j)
			case opts.ShowCompatible && opts.Highlight.Contains(i) && opts.Highlight.Contains(j):
				fmt.Fprintf(&buf, "  c%d -- c%d [color=darkgreen, penwidth=2];\n", i, j)
			case opts.ShowCompatible:
				fmt.Fprintf(&buf, "  c%d -- c%d [color=grey, style=dashed];\n", i, j)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return strconv.Itoa(i)
}

// RenderSVG lays out DOT source with circo and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.CIRCO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces graphviz's pt-sized root element with a
// zero-origin viewBox so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
