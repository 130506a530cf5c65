package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	sperrors "github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/signal"
)

// auditCommand creates the audit command.
func (c *CLI) auditCommand() *cobra.Command {
	var junction string

	cmd := &cobra.Command{
		Use:   "audit <network.net.xml>",
		Short: "Check traffic light programs against the foe matrix",
		Long: `Check that every phase of a junction's traffic light program only shows
green on mutually compatible connections. Without --junction, every traffic
light with a program is audited. Exits non-zero if any state is unsafe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := c.loadNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ids := net.TrafficLights()
			if junction != "" {
				ids = []string{junction}
			}

			unsafe, audited := 0, 0
			t := newTable("junction", "phase", "state", "result")
			for _, id := range ids {
				j, err := net.Junction(id)
				if err != nil {
					return err
				}
				program, err := net.Program(id)
				if err != nil {
					if junction != "" {
						return err
					}
					continue
				}
				m, err := j.FoeMatrix()
				if err != nil {
					return fmt.Errorf("junction %s: %w", id, err)
				}
				for i, p := range program.Phases {
					audited++
					result := styleIconSuccess.Render(iconSuccess)
					if err := signal.Audit(m, p.State); err != nil {
						unsafe++
						result = styleIconError.Render(iconError) + " " + sperrors.UserMessage(err)
					}
					t.Row(id, fmt.Sprint(i), colorState(p.State), result)
				}
			}

			if audited == 0 {
				printInfo("No traffic light programs to audit")
				return nil
			}
			fmt.Fprintln(stdout, t.Render())
			if unsafe > 0 {
				printError("%d of %d states are unsafe", unsafe, audited)
				return sperrors.New(sperrors.ErrCodeInvalidState, "%d unsafe states", unsafe)
			}
			printSuccess("All %d states are safe", audited)
			return nil
		},
	}

	cmd.Flags().StringVarP(&junction, "junction", "j", "", "audit only this junction")

	return cmd
}
