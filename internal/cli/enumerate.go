package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/safephase/pkg/io"
	"github.com/matzehuels/safephase/pkg/phase"
	"github.com/matzehuels/safephase/pkg/pipeline"
)

// enumerateOpts holds the flags of the enumerate command.
type enumerateOpts struct {
	input     inputFlags
	all       bool   // every traffic light of the network
	format    string // table or json
	output    string // write JSON here instead of stdout
	maxPhases int
	maximal   bool // table: only phases not contained in a larger one
	refresh   bool
}

// enumerateCommand creates the enumerate command.
func (c *CLI) enumerateCommand() *cobra.Command {
	opts := enumerateOpts{format: pipeline.FormatTable}

	cmd := &cobra.Command{
		Use:   "enumerate [network.net.xml]",
		Short: "List the safe phases of a junction",
		Long: `List every set of connections of a junction that can be green together.

Examples:
  safephase enumerate grid.net.xml -j C
  safephase enumerate grid.net.xml --all -f json -o phases.json
  safephase enumerate -m junction.json --maximal`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			if opts.all {
				return c.runEnumerateAll(cmd.Context(), args, opts)
			}
			return c.runEnumerate(cmd.Context(), args, opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().BoolVar(&opts.all, "all", false, "enumerate every traffic light junction of the network")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (json)")
	cmd.Flags().IntVar(&opts.maxPhases, "max-phases", 0, "abort when more phases would be produced (0 = config default)")
	cmd.Flags().BoolVar(&opts.maximal, "maximal", false, "show only maximal phases in the table")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) pipelineOptions(opts enumerateOpts) (pipeline.Options, error) {
	po, err := c.baseOptions()
	if err != nil {
		return po, err
	}
	if opts.maxPhases > 0 {
		po.MaxPhases = opts.maxPhases
	}
	po.Refresh = opts.refresh
	return po, nil
}

func (c *CLI) runEnumerate(ctx context.Context, args []string, opts enumerateOpts) error {
	po, err := c.pipelineOptions(opts)
	if err != nil {
		return err
	}
	if err := opts.input.options(args, &po); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	out, err := runner.Execute(ctx, po)
	if err != nil {
		return err
	}

	if opts.format == pipeline.FormatJSON {
		return writeJSONOutput(opts.output, out.Result)
	}
	return printResult(out, opts.maximal)
}

func (c *CLI) runEnumerateAll(ctx context.Context, args []string, opts enumerateOpts) error {
	if len(args) != 1 {
		return fmt.Errorf("--all requires a network file")
	}
	po, err := c.pipelineOptions(opts)
	if err != nil {
		return err
	}
	prog := newProgress(loggerFromContext(ctx))

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	net, _, err := runner.LoadNetwork(ctx, args[0], po)
	if err != nil {
		return err
	}

	outs, err := runner.EnumerateAll(ctx, net, po)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Enumerated %d junctions", len(outs)))

	if opts.format == pipeline.FormatJSON {
		results := make([]*phase.Result, len(outs))
		for i, o := range outs {
			results[i] = o.Result
		}
		return writeJSONOutput(opts.output, results)
	}

	t := newTable("junction", "connections", "phases", "largest", "cache")
	for _, o := range outs {
		status := iconFresh
		if o.CacheHit {
			status = iconCached
		}
		t.Row(o.Junction.ID,
			fmt.Sprint(o.Result.N),
			fmt.Sprint(len(o.Result.Phases)),
			fmt.Sprint(o.Result.Largest()),
			status)
	}
	fmt.Fprintln(stdout, t.Render())
	return nil
}

func printResult(out *pipeline.Output, maximal bool) error {
	res := out.Result
	title := "Safe phases"
	if out.Junction.ID != "" {
		title += " of " + out.Junction.ID
	}
	fmt.Fprintln(stdout, StyleTitle.Render(title))
	printStats(out.Stats, out.CacheHit)
	for _, d := range res.Diagnostics {
		printWarning("%s", d.Message)
	}

	phases := res.Phases
	if maximal {
		phases = res.Maximal()
	}
	if len(phases) == 0 {
		printInfo("No connections")
		return nil
	}
	table, err := phaseTable(res.N, phases)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, table)
	return nil
}

// writeJSONOutput writes v as indented JSON to path, or to stdout when path
// is empty. Results go through the io package so files match the API format.
func writeJSONOutput(path string, v any) error {
	if res, ok := v.(*phase.Result); ok {
		if path == "" {
			return pkgio.WriteResult(stdout, res)
		}
		if err := pkgio.ExportResult(res, path); err != nil {
			return err
		}
		printSuccess("Wrote %d phases", len(res.Phases))
		printFile(path)
		return nil
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}
