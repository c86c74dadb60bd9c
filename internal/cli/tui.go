package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/forgewm/forge/pkg/scenario"
	"github.com/forgewm/forge/pkg/snapshot"
)

// =============================================================================
// Shared Styles
// =============================================================================

var (
	listSelectedStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Key Bindings
// =============================================================================

type inspectKeys struct {
	Up       key.Binding
	Down     key.Binding
	Float    key.Binding
	Minimize key.Binding
	Render   key.Binding
	Quit     key.Binding
}

func defaultInspectKeys() inspectKeys {
	return inspectKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Float:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "toggle float")),
		Minimize: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "minimize/restore")),
		Render:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "render")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k inspectKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Float, k.Minimize, k.Render, k.Quit}
}

func (k inspectKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// =============================================================================
// InspectModel - Interactive window inspection
// =============================================================================

// InspectModel is the bubbletea model for browsing a replayed scenario.
// Actions go through the same event path as scenario files, so the tree
// is re-rendered after every change.
type InspectModel struct {
	ctx    context.Context
	replay *scenario.Replay
	keys   inspectKeys
	help   help.Model

	Snapshot *snapshot.Snapshot
	Windows  []*snapshot.Node
	Cursor   int
	Status   string
	Err      error
}

// NewInspectModel creates a model over r.
func NewInspectModel(ctx context.Context, r *scenario.Replay) InspectModel {
	m := InspectModel{
		ctx:    ctx,
		replay: r,
		keys:   defaultInspectKeys(),
		help:   help.New(),
	}
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	m.help.Styles.ShortDesc = listDimStyle
	m.help.Styles.ShortSeparator = listDimStyle
	m.refresh()
	return m
}

// refresh recaptures the snapshot and clamps the cursor.
func (m *InspectModel) refresh() {
	m.Snapshot = m.replay.Snapshot()
	m.Windows = m.Windows[:0]
	m.Snapshot.Walk(func(n *snapshot.Node, _ int) {
		if n.IsWindow() {
			m.Windows = append(m.Windows, n)
		}
	})
	m.Cursor = min(m.Cursor, max(len(m.Windows)-1, 0))
}

// selected returns the window under the cursor, or nil if there is none.
func (m InspectModel) selected() *snapshot.Node {
	if len(m.Windows) == 0 {
		return nil
	}
	return m.Windows[m.Cursor]
}

// apply runs one event against the replay and reports the outcome.
func (m *InspectModel) apply(e scenario.Event) {
	if err := scenario.Apply(m.ctx, m.replay.Manager, m.replay.Display, e); err != nil {
		m.Err = err
		m.Status = ""
	} else {
		m.Err = nil
		m.Status = e.String()
	}
	m.refresh()
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.Cursor < len(m.Windows)-1 {
			m.Cursor++
		}
	case key.Matches(keyMsg, m.keys.Float):
		if w := m.selected(); w != nil {
			m.apply(scenario.Event{Op: scenario.OpToggleFloat, Window: w.Label})
		}
	case key.Matches(keyMsg, m.keys.Minimize):
		if w := m.selected(); w != nil {
			op := scenario.OpMinimize
			if w.Minimized {
				op = scenario.OpRestore
			}
			m.apply(scenario.Event{Op: op, Window: w.Label})
		}
	case key.Matches(keyMsg, m.keys.Render):
		m.replay.Manager.Render(m.ctx)
		m.Err = nil
		m.Status = "rendered"
		m.refresh()
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	title := m.Snapshot.Name
	if title == "" {
		title = "forge"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n\n")

	if len(m.Windows) == 0 {
		b.WriteString(listDimStyle.Render("  no windows"))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	rows := make([][]string, len(m.Windows))
	for i, w := range m.Windows {
		state := w.Mode
		if w.Minimized {
			state = "minimized"
		}
		rect := "-"
		if w.Rect != nil {
			rect = w.Rect.String()
		}
		rows[i] = []string{w.Label, w.Class, state, rect}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("WINDOW", "CLASS", "STATE", "RECT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case row == m.Cursor:
				return listSelectedStyle.Padding(0, 1)
			case col == 2 && rows[row][2] != "tile":
				return styleFloating.Padding(0, 1)
			default:
				return styleCell
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Windows))))
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(listErrorStyle.Render("  " + m.Err.Error()))
	case m.Status != "":
		b.WriteString(StyleSuccess.Render("  " + m.Status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// inspectCommand creates the inspect command, an interactive view over a
// replayed scenario.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [scenario]",
		Short: "Browse a replayed scenario interactively",
		Long: `Replay a scenario and open an interactive view of its windows. Windows can
be floated, minimized and restored; every change re-renders the tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.ManagerOptions(c.Logger)
			if err != nil {
				return err
			}
			s, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			r, err := scenario.Run(ctx, s, opts)
			if err != nil {
				return err
			}

			// The program owns the terminal; keep logs out of the view.
			c.SetLogLevel(LogWarn)
			p := tea.NewProgram(NewInspectModel(ctx, r), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}
