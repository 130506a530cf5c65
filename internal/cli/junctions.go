package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/safephase/pkg/io"
	"github.com/matzehuels/safephase/pkg/netxml"
)

// junctionsCommand creates the junctions command.
func (c *CLI) junctionsCommand() *cobra.Command {
	var all bool
	var export string

	cmd := &cobra.Command{
		Use:   "junctions <network.net.xml>",
		Short: "List the junctions of a network",
		Long: `List the signalized junctions of a SUMO network with their connection
counts. With --export, write each listed junction's foe matrix as a matrix
JSON file into the given directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := c.loadNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var listed []*netxml.Junction
			for i := range net.Junctions {
				j := &net.Junctions[i]
				if all || j.Signalized() {
					listed = append(listed, j)
				}
			}
			if len(listed) == 0 {
				printInfo("No signalized junctions in %s", args[0])
				return nil
			}

			t := newTable("junction", "type", "connections", "conflicts", "program")
			for _, j := range listed {
				program := "-"
				if p, err := net.Program(j.ID); err == nil {
					program = fmt.Sprintf("%s (%d phases)", p.ProgramID, len(p.Phases))
				}
				t.Row(j.ID, j.Type, fmt.Sprint(len(j.Requests)), conflictSummary(j), program)
			}
			fmt.Fprintln(stdout, t.Render())

			if export != "" {
				return exportMatrices(export, listed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include junctions that are not traffic lights")
	cmd.Flags().StringVar(&export, "export", "", "write matrix JSON files to this directory")

	return cmd
}

func exportMatrices(dir string, junctions []*netxml.Junction) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	written := 0
	for _, j := range junctions {
		if len(j.Requests) == 0 {
			continue
		}
		m, err := j.FoeMatrix()
		if err != nil {
			printWarning("skipping %s: %v", j.ID, err)
			continue
		}
		path := filepath.Join(dir, safeFilename(j.ID)+".json")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := pkgio.WriteMatrix(f, j.Declaration(), m); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		written++
	}
	printSuccess("Exported %d matrices", written)
	printDetail("Directory: %s", dir)
	return nil
}

// conflictSummary reports the number of conflicting pairs of j and the
// largest number of foes of a single connection, e.g. "4 (max 2)".
func conflictSummary(j *netxml.Junction) string {
	m, err := j.FoeMatrix()
	if err != nil {
		return "-"
	}
	pairs, most := 0, 0
	for i := range m.Size() {
		d := m.Degree(i)
		pairs += d
		most = max(most, d)
	}
	return fmt.Sprintf("%d (max %d)", pairs/2, most)
}

// safeFilename replaces path separators and other characters SUMO allows in
// IDs (":J0", "cluster_1/2") that are awkward in file names.
func safeFilename(id string) string {
	b := []byte(id)
	for i, ch := range b {
		switch ch {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			b[i] = '_'
		}
	}
	return string(b)
}
