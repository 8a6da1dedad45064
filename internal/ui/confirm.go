package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmPhrase must be typed exactly to confirm a dangerous operation
const ConfirmPhrase = "I AGREE"

// ConfirmDangerousOperation writes a warning box to out and reads one line
// from in. It returns true only if the line is ConfirmPhrase.
func ConfirmDangerousOperation(in io.Reader, out io.Writer, title string, warnings []string, disclaimer string) bool {
	width := clampWidth(GetTerminalWidth())

	lines := []string{
		"",
		lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
			Render(fmt.Sprintf("   ⚠  WARNING  ─  %s", title)),
		"",
	}
	bullet := lipgloss.NewStyle().Foreground(TextColor)
	for _, w := range warnings {
		lines = append(lines, bullet.Render("   • "+w))
	}
	lines = append(lines, "")

	if disclaimer != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Width(width-12).
			PaddingLeft(3).
			Render(disclaimer), "")
	}

	fmt.Fprintln(out, boxStyle(WarningColor, width).Render(strings.Join(lines, "\n")))
	fmt.Fprintln(out)
	fmt.Fprint(out, lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
		Render(fmt.Sprintf("To proceed, type %q and press Enter: ", ConfirmPhrase)))

	answer, err := bufio.NewReader(in).ReadString('\n')
	fmt.Fprintln(out)
	if err != nil && answer == "" {
		return false
	}

	if strings.TrimSpace(answer) == ConfirmPhrase {
		return true
	}

	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	fmt.Fprintln(out)
	return false
}

// FactoryResetConfirmation asks before restoring the matrix to factory settings
func FactoryResetConfirmation(in io.Reader, out io.Writer) bool {
	return ConfirmDangerousOperation(in, out,
		"FACTORY RESET",
		[]string{
			"All routing and EDID assignments return to factory defaults",
			"Front panel settings such as the beep are reset",
			"The matrix may not answer for a few seconds afterwards",
		},
		"Routing and EDID settings cannot be recovered after the reset. "+
			"Run 'blackbird status' first if you want a record of them.",
	)
}
