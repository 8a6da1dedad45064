package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/Cody994/21905-SerialController/internal/matrix"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet sent
	StepRunning                    // Being sent
	StepComplete                   // Acknowledged by the matrix
	StepFailed                     // Failed
	StepSkipped                    // Not sent because an earlier step failed
)

// Step is one frame of a multi-port command, e.g. "Output 3"
type Step struct {
	Name    string
	Status  StepStatus
	Message string // Optional note, e.g. "timed out"
}

// Progress is a step list with a completion bar
type Progress struct {
	Label   string
	Steps   []Step
	Width   int
	ShowBar bool
	bar     progress.Model
}

// NewProgress creates a progress display with one pending step per name
func NewProgress(label string, names ...string) *Progress {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i] = Step{Name: name}
	}
	p := &Progress{Label: label, Steps: steps, ShowBar: true}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth sets the terminal width and resizes the bar to fit
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 20
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))
	return p
}

// UpdateStep sets the status of step i (0-based). Out of range is ignored.
func (p *Progress) UpdateStep(i int, status StepStatus, message string) {
	if i < 0 || i >= len(p.Steps) {
		return
	}
	p.Steps[i].Status = status
	p.Steps[i].Message = message
}

// Completed counts acknowledged steps
func (p *Progress) Completed() int {
	n := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete {
			n++
		}
	}
	return n
}

// Percent is the completed fraction, 0.0-1.0
func (p *Progress) Percent() float64 {
	if len(p.Steps) == 0 {
		return 0
	}
	return float64(p.Completed()) / float64(len(p.Steps))
}

// ApplyOutcome marks every step from the result of a multi-port command.
// A *matrix.FanOutError marks the steps before the failure complete, the
// failing one failed and the rest skipped. Any other error means nothing
// reached the matrix past the first step.
func (p *Progress) ApplyOutcome(err error) {
	var fanOut *matrix.FanOutError
	switch {
	case err == nil:
		for i := range p.Steps {
			p.UpdateStep(i, StepComplete, "")
		}
	case errors.As(err, &fanOut):
		for i := range p.Steps {
			switch {
			case i < fanOut.Completed:
				p.UpdateStep(i, StepComplete, "")
			case i == fanOut.Index:
				p.UpdateStep(i, StepFailed, stepNote(fanOut.Err))
			default:
				p.UpdateStep(i, StepSkipped, "not sent")
			}
		}
	case matrix.IsInvalidOperand(err):
		for i := range p.Steps {
			p.UpdateStep(i, StepSkipped, "not sent")
		}
	default:
		for i := range p.Steps {
			if i == 0 {
				p.UpdateStep(i, StepFailed, stepNote(err))
			} else {
				p.UpdateStep(i, StepSkipped, "not sent")
			}
		}
	}
}

func stepNote(err error) string {
	var te *matrix.TransportError
	switch {
	case errors.As(err, &te) && te.Timeout():
		return "no reply"
	case matrix.IsTransportError(err):
		return "serial error"
	case matrix.IsMalformedResponse(err):
		return "bad reply"
	}
	return "failed"
}

// Render returns the styled progress display as a string
func (p *Progress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(TextColor).PaddingLeft(2).Render(p.Label))
		b.WriteString("\n\n")
	}

	if p.ShowBar {
		line := fmt.Sprintf("%s  %3.0f%%  [%d/%d]", p.bar.ViewAs(p.Percent()), p.Percent()*100, p.Completed(), len(p.Steps))
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(line))
		b.WriteString("\n\n")
	}

	lines := make([]string, 0, len(p.Steps))
	for i, step := range p.Steps {
		lines = append(lines, p.renderStepLine(i, step))
	}
	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}

func (p *Progress) renderStepLine(i int, step Step) string {
	var marker string
	var style lipgloss.Style

	switch step.Status {
	case StepComplete:
		marker, style = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, style = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, style = FailureMarker, ErrorTitleStyle
	case StepSkipped:
		marker, style = StepMarkerSkipped, StepPendingStyle
	default:
		marker, style = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  [%d/%d] ", i+1, len(p.Steps)))
	b.WriteString(style.Render(step.Name))

	// Markers line up in one column
	padding := 30 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}
	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}
