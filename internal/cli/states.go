package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/safephase/pkg/signal"
)

// statesCommand creates the states command.
func (c *CLI) statesCommand() *cobra.Command {
	var input inputFlags
	var from, to int

	cmd := &cobra.Command{
		Use:   "states [network.net.xml]",
		Short: "Print the signal state string of every safe phase",
		Long: `Print one SUMO state string per safe phase, 'G' for the connections of the
phase and 'r' for all others, in enumeration order.

With --from and --to, print the transition between two phases instead:
the yellow state of the first followed by the second.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := input.options(args, &po); err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			out, err := runner.Execute(cmd.Context(), po)
			if err != nil {
				return err
			}
			states, err := signal.States(out.Result)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
				return printTransition(states, from, to)
			}
			for _, s := range states {
				fmt.Fprintln(stdout, s)
			}
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().IntVar(&from, "from", 0, "index of the outgoing phase")
	cmd.Flags().IntVar(&to, "to", 0, "index of the incoming phase")

	return cmd
}

func printTransition(states []string, from, to int) error {
	for _, i := range []int{from, to} {
		if i < 0 || i >= len(states) {
			return fmt.Errorf("phase index %d out of range [0, %d)", i, len(states))
		}
	}
	seq, err := signal.Transition(states[from], states[to])
	if err != nil {
		return err
	}
	if len(seq) == 0 {
		printInfo("Phases %d and %d are identical, no transition needed", from, to)
		return nil
	}
	labels := []string{"yellow", "next"}
	for i, s := range seq {
		fmt.Fprintln(stdout, colorState(s)+"  "+StyleDim.Render(labels[i]))
	}
	printDetail("%s", strings.Join([]string{strconv.Itoa(from), iconArrow, strconv.Itoa(to)}, " "))
	return nil
}
