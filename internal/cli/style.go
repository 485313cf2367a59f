package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#eab308"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// interactive reports whether stderr is a terminal. launchd runs have
// stderr pointed at a file or /dev/null.
func interactive() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
