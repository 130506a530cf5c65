package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/safephase/pkg/conflict"
	"github.com/matzehuels/safephase/pkg/phase"
	"github.com/matzehuels/safephase/pkg/signal"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the interactive phase browser.
func (c *CLI) browseCommand() *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "browse [network.net.xml]",
		Short: "Browse the safe phases of a junction interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := input.options(args, &po); err != nil {
				return err
			}
			decl, m, err := input.load(args)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			out, err := runner.EnumerateMatrix(cmd.Context(), decl, m, po)
			if err != nil {
				return err
			}

			model := NewPhaseListModel(decl.ID, m, out.Result)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	input.register(cmd)
	return cmd
}

// =============================================================================
// PhaseListModel - Interactive phase browser
// =============================================================================

// PhaseListModel is the bubbletea model of the phase browser.
type PhaseListModel struct {
	Junction string
	Matrix   *conflict.Matrix
	All      []phase.Phase
	Maximal  []phase.Phase

	MaximalOnly bool
	Cursor      int
	Height      int
	Offset      int
}

// NewPhaseListModel creates a browser over the phases of res.
func NewPhaseListModel(junction string, m *conflict.Matrix, res *phase.Result) PhaseListModel {
	return PhaseListModel{
		Junction: junction,
		Matrix:   m,
		All:      res.Phases,
		Maximal:  res.Maximal(),
		Height:   15,
	}
}

func (m PhaseListModel) visible() []phase.Phase {
	if m.MaximalOnly {
		return m.Maximal
	}
	return m.All
}

func (m PhaseListModel) Init() tea.Cmd {
	return nil
}

func (m PhaseListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 3)
	case tea.KeyMsg:
		n := len(m.visible())
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(n-1, 0)
		case "m":
			m.MaximalOnly = !m.MaximalOnly
			m.Cursor, m.Offset = 0, 0
		}
		if m.Cursor < m.Offset {
			m.Offset = m.Cursor
		}
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m PhaseListModel) View() string {
	var b strings.Builder
	phases := m.visible()

	title := "Safe phases"
	if m.Junction != "" {
		title += " of " + m.Junction
	}
	mode := "all"
	if m.MaximalOnly {
		mode = "maximal"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d %s", len(phases), mode)))
	b.WriteString("\n\n")

	if len(phases) == 0 {
		b.WriteString(listDimStyle.Render("  no connections"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(phases))
	for i := m.Offset; i < end; i++ {
		line := fmt.Sprintf("%3d  %s", i, formatPhase(phases[i]))
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("› " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if end < len(phases) {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  … %d more", len(phases)-end)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detail(phases[m.Cursor]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move · m toggle maximal · q quit"))
	b.WriteString("\n")
	return b.String()
}

// detail describes the selected phase: its state string and the
// connections that could still be added.
func (m PhaseListModel) detail(p phase.Phase) string {
	state, err := signal.State(m.Matrix.Size(), p)
	if err != nil {
		return listDimStyle.Render(err.Error())
	}

	var extend []int
	for c := range m.Matrix.Size() {
		if !p.Contains(c) && m.Matrix.Compatible(append(slices.Clone(p), c)) {
			extend = append(extend, c)
		}
	}
	extendable := "none (maximal)"
	if len(extend) > 0 {
		extendable = fmt.Sprint(extend)
	}

	lines := []string{
		listDimStyle.Render("state   ") + colorState(state),
		listDimStyle.Render("size    ") + fmt.Sprint(len(p)),
		listDimStyle.Render("extend  ") + extendable,
	}
	return strings.Join(lines, "\n")
}
