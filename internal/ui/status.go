package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/protocol"
)

// Labeler names ports for display. *config.File satisfies it.
type Labeler interface {
	InputLabel(n int) string
	OutputLabel(n int) string
}

type plainLabels struct{}

func (plainLabels) InputLabel(n int) string  { return fmt.Sprintf("Input %d", n) }
func (plainLabels) OutputLabel(n int) string { return fmt.Sprintf("Output %d", n) }

func labelsOrPlain(l Labeler) Labeler {
	if l == nil {
		return plainLabels{}
	}
	return l
}

// OnOff renders a flag as "on"/"off"
func OnOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// YesNo renders a flag as "yes"/"no"
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// newTable returns a bordered table whose "yes"/"on" cells are highlighted
func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if row < 0 || row >= len(rows) || col >= len(rows[row]) {
				return TableCellStyle
			}
			switch rows[row][col] {
			case "yes", "on":
				return OnStyle
			case "no", "off":
				return OffStyle
			}
			return TableCellStyle
		})
}

// RenderRoutes renders an output -> input table
func RenderRoutes(routes []matrix.Route, labels Labeler) string {
	labels = labelsOrPlain(labels)
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, []string{labels.OutputLabel(r.Output), labels.InputLabel(r.Input)})
	}
	return newTable([]string{"OUTPUT", "SOURCE"}, rows).String()
}

// RenderSnapshot renders power, beep, and the output and input tables
func RenderSnapshot(s *matrix.Snapshot, labels Labeler) string {
	labels = labelsOrPlain(labels)

	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		ResultKeyStyle.Render("Power:"), stateStyle(s.Power).Render(OnOff(s.Power)),
		"   ",
		ResultKeyStyle.Render("Beep:"), stateStyle(s.Beep).Render(OnOff(s.Beep)),
	)

	outRows := make([][]string, 0, len(s.Outputs))
	for _, o := range s.Outputs {
		outRows = append(outRows, []string{labels.OutputLabel(o.Port), labels.InputLabel(o.Input), YesNo(o.Connected)})
	}
	inRows := make([][]string, 0, len(s.Inputs))
	for _, in := range s.Inputs {
		inRows = append(inRows, []string{labels.InputLabel(in.Port), YesNo(in.Connected), strconv.Itoa(int(in.EDID)), in.EDIDName})
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		summary,
		"",
		newTable([]string{"OUTPUT", "SOURCE", "DISPLAY"}, outRows).String(),
		"",
		newTable([]string{"INPUT", "SIGNAL", "EDID", "PROFILE"}, inRows).String(),
	)
}

// RenderEDIDProfiles lists the built-in EDID presets
func RenderEDIDProfiles() string {
	profiles := protocol.EDIDProfiles()
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{strconv.Itoa(int(p)), p.String()})
	}
	return newTable([]string{"#", "PROFILE"}, rows).String()
}

func stateStyle(on bool) lipgloss.Style {
	if on {
		return lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(MutedColor)
}
