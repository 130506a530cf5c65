package cli

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	sperrors "github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/phase"
	"github.com/matzehuels/safephase/pkg/pipeline"
	"github.com/matzehuels/safephase/pkg/render"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	input      inputFlags
	output     string // output file; defaults to <junction>.<format>
	format     string // svg or dot
	highlight  string // comma-separated connection indices
	compatible bool   // draw compatible pairs
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render [network.net.xml]",
		Short: "Draw the conflict graph of a junction",
		Long: `Draw the conflict graph of a junction: one node per connection, a red edge
between every pair of foes. --compatible adds dashed edges between compatible
connections and --highlight fills the members of a phase.

Examples:
  safephase render grid.net.xml -j C
  safephase render -m junction.json --highlight 1,2,3 --compatible -o star.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateRenderFormat(opts.format); err != nil {
				return err
			}
			highlight, err := parsePhase(opts.highlight)
			if err != nil {
				return err
			}

			decl, m, err := opts.input.load(args)
			if err != nil {
				return err
			}
			if !m.Compatible(highlight) {
				printWarning("highlighted connections %v are not a safe phase", highlight)
			}

			dot := render.ToDOT(m, render.Options{
				Title:          decl.ID,
				Highlight:      highlight,
				ShowCompatible: opts.compatible,
			})
			data := []byte(dot)
			if opts.format == pipeline.FormatSVG {
				if data, err = render.RenderSVG(cmd.Context(), dot); err != nil {
					return err
				}
			}

			path := opts.output
			if path == "" {
				name := decl.ID
				if name == "" {
					name = "conflicts"
				}
				path = safeFilename(name) + "." + opts.format
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered conflict graph (%d connections)", m.Size())
			printFile(path)
			return nil
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <junction>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, dot")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "connections to highlight, e.g. 0,2")
	cmd.Flags().BoolVar(&opts.compatible, "compatible", false, "draw edges between compatible connections")

	return cmd
}

// parsePhase parses "0,2,3" into a sorted phase.
func parsePhase(s string) (phase.Phase, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var p phase.Phase
	for _, part := range strings.Split(s, ",") {
		c, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || c < 0 {
			return nil, sperrors.New(sperrors.ErrCodeInvalidPhase, "invalid connection index %q", part)
		}
		p = append(p, c)
	}
	slices.Sort(p)
	return slices.Compact(p), nil
}
