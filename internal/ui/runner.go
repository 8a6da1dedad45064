package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes one CLI command execution
type RunnerConfig struct {
	Title   string  // e.g., "Route Input"
	Command string  // e.g., "blackbird route 2 1 3"
	Params  []Field // Shown in the header
	Steps   []string
	Output  io.Writer // Default: os.Stdout

	// Troubleshoot turns an error into a summary and tips for the failure box
	Troubleshoot func(err error) (string, []string)
}

// Operation does the work and returns the details for the success box
type Operation func() ([]Field, error)

// Runner prints header, then steps, then a result box around an Operation
type Runner struct {
	config   RunnerConfig
	progress *Progress
	out      io.Writer
	width    int
}

// NewRunner creates a Runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()

	var p *Progress
	if len(config.Steps) > 0 {
		p = NewProgress("", config.Steps...)
		p.SetWidth(width)
		p.ShowBar = len(config.Steps) > 1
	}

	return &Runner{config: config, progress: p, out: config.Output, width: width}
}

// SetWidth overrides the detected terminal width
func (r *Runner) SetWidth(width int) *Runner {
	r.width = width
	if r.progress != nil {
		r.progress.SetWidth(width)
	}
	return r
}

// Run executes op and prints the outcome. The error from op is returned
// unchanged.
func (r *Runner) Run(op Operation) error {
	start := time.Now()

	header := NewHeader(r.config.Title, r.config.Command, r.config.Params...)
	header.SetWidth(r.width)
	fmt.Fprintln(r.out, header.Render())
	fmt.Fprintln(r.out)

	details, err := op()
	duration := time.Since(start).Round(time.Millisecond)

	if r.progress != nil {
		r.progress.ApplyOutcome(err)
		fmt.Fprintln(r.out, r.progress.Render())
		fmt.Fprintln(r.out)
	}

	var result *Result
	if err != nil {
		title := r.config.Title + " failed"
		var tips []string
		if r.config.Troubleshoot != nil {
			var summary string
			summary, tips = r.config.Troubleshoot(err)
			if summary != "" {
				title = summary
			}
		}
		result = NewFailureResult(title, err, tips)
		if r.progress != nil && len(r.progress.Steps) > 1 {
			result.AddDetail("Completed", fmt.Sprintf("%d of %d", r.progress.Completed(), len(r.progress.Steps)))
		}
	} else {
		result = NewSuccessResult(r.config.Title+" complete", details...)
		result.AddDetail("Duration", duration.String())
	}
	result.SetWidth(r.width)
	fmt.Fprintln(r.out, result.Render())

	return err
}
