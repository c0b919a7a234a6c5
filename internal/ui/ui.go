// Package ui renders CLI summary output with lipgloss, matching the
// muted, table-heavy style the rest of this codebase's tooling uses.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	AccentStyle = lipgloss.NewStyle().Foreground(purple).Bold(true)
	LabelStyle  = lipgloss.NewStyle().Foreground(dim)
	WarnStyle   = lipgloss.NewStyle().Foreground(yellow)
	ErrorStyle  = lipgloss.NewStyle().Foreground(red)
	SuccessStyle = lipgloss.NewStyle().Foreground(green)
)

// Init sets lipgloss's color profile from the terminal, falling back
// to plain ASCII when output isn't a TTY (e.g. piped into a file).
func Init() {
	if !isTerminal() {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Pair is one row of a KeyValues block.
type Pair struct {
	Key, Value string
}

// KV builds a Pair.
func KV(key, value string) Pair { return Pair{Key: key, Value: value} }

// KeyValues renders aligned "key:  value" lines.
func KeyValues(pairs ...Pair) string {
	maxLen := 0
	for _, p := range pairs {
		if len(p.Key) > maxLen {
			maxLen = len(p.Key)
		}
	}
	var sb strings.Builder
	for _, p := range pairs {
		label := fmt.Sprintf("%-*s", maxLen+1, p.Key+":")
		sb.WriteString(LabelStyle.Render(label) + " " + p.Value + "\n")
	}
	return sb.String()
}

// Table renders a styled table with rounded borders.
func Table(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddStyle := cellStyle.Foreground(dim)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return oddStyle
			default:
				return cellStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}
