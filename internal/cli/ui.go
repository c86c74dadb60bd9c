package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	ltree "github.com/charmbracelet/lipgloss/tree"

	"github.com/forgewm/forge/pkg/snapshot"
	"github.com/forgewm/forge/pkg/wm"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleCell     = lipgloss.NewStyle().Padding(0, 1)
	styleCellDim  = styleCell.Foreground(colorGray)
	styleBorder   = lipgloss.NewStyle().Foreground(colorDim)
	styleFloating = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, "  "+StyleDim.Render(msg))
}

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printStats prints snapshot statistics on a single line.
func printStats(w io.Writer, snap *snapshot.Snapshot, cached bool) {
	windows := snap.Count()["WINDOW"]
	parts := []string{
		pluralize(windows, "window"),
		fmt.Sprintf("%d placed", len(snap.Placements)),
	}
	if hidden := windows - len(snap.Placements); hidden > 0 {
		parts = append(parts, fmt.Sprintf("%d floating or minimized", hidden))
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	fmt.Fprintln(w, line+StyleDim.Render(" · ")+statusStyle.Render(status))
}

// pluralize formats a count with a naively pluralized noun.
func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// =============================================================================
// Tables & Trees
// =============================================================================

// placementTable renders window placements as a bordered table.
func placementTable(placements []wm.Placement) string {
	rows := make([][]string, len(placements))
	for i, p := range placements {
		rows[i] = []string{
			p.Window,
			p.Class,
			strconv.Itoa(p.Rect.X),
			strconv.Itoa(p.Rect.Y),
			strconv.Itoa(p.Rect.Width),
			strconv.Itoa(p.Rect.Height),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("WINDOW", "CLASS", "X", "Y", "WIDTH", "HEIGHT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 1:
				return styleCellDim
			default:
				return styleCell
			}
		}).
		String()
}

// layoutTree renders the snapshot hierarchy with one line per node.
func layoutTree(snap *snapshot.Snapshot) string {
	return buildTree(snap.Root).
		Enumerator(ltree.RoundedEnumerator).
		EnumeratorStyle(styleBorder).
		String()
}

func buildTree(n *snapshot.Node) *ltree.Tree {
	t := ltree.Root(nodeLine(n))
	for _, c := range n.Children {
		if len(c.Children) == 0 {
			t.Child(nodeLine(c))
			continue
		}
		t.Child(buildTree(c))
	}
	return t
}

// nodeLine is the one-line description of a node in a layout tree.
func nodeLine(n *snapshot.Node) string {
	if !n.IsWindow() {
		line := StyleTitle.Render(n.Label)
		if n.Layout != "" {
			line += " " + StyleDim.Render(n.Layout)
		}
		return line
	}

	line := StyleValue.Render(n.Label)
	if n.Class != "" {
		line += " " + StyleDim.Render(n.Class)
	}
	switch {
	case n.Minimized:
		line += " " + StyleDim.Render("minimized")
	case n.Mode == "float":
		line += " " + styleFloating.Render("float")
	}
	if n.Rect != nil {
		line += " " + StyleNumber.Render(n.Rect.String())
	}
	return line
}
