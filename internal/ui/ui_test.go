package ui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/protocol"
)

func TestHintTips(t *testing.T) {
	summary, tips := HintTips(matrix.TroubleshootingHint(&matrix.TransportError{Op: "read", Err: io.EOF}))
	if summary != "Serial communication failed." {
		t.Errorf("summary = %q", summary)
	}
	if len(tips) != 3 {
		t.Fatalf("tips = %v", tips)
	}
	for _, tip := range tips {
		if strings.HasPrefix(tip, "•") || tip == "" {
			t.Errorf("tip not trimmed: %q", tip)
		}
	}

	summary, tips = HintTips("")
	if summary != "" || tips != nil {
		t.Errorf("empty hint = %q, %v", summary, tips)
	}
}

func TestProgress_ApplyOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []StepStatus
	}{
		{
			name: "success",
			err:  nil,
			want: []StepStatus{StepComplete, StepComplete, StepComplete},
		},
		{
			name: "fan out failure",
			err:  &matrix.FanOutError{Index: 1, Target: 3, Completed: 1, Total: 3, Err: io.EOF},
			want: []StepStatus{StepComplete, StepFailed, StepSkipped},
		},
		{
			name: "invalid operand",
			err:  protocol.CheckRange("output", 9, 1, 4),
			want: []StepStatus{StepSkipped, StepSkipped, StepSkipped},
		},
		{
			name: "other error",
			err:  &matrix.TransportError{Op: "write", Err: io.ErrShortWrite},
			want: []StepStatus{StepFailed, StepSkipped, StepSkipped},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgress("", "Output 1", "Output 3", "Output 4")
			p.ApplyOutcome(tt.err)
			for i, want := range tt.want {
				if p.Steps[i].Status != want {
					t.Errorf("step %d = %v, want %v", i, p.Steps[i].Status, want)
				}
			}
		})
	}
}

func TestProgress_Percent(t *testing.T) {
	p := NewProgress("", "a", "b", "c", "d")
	p.UpdateStep(0, StepComplete, "")
	p.UpdateStep(1, StepComplete, "")
	p.UpdateStep(9, StepComplete, "") // ignored
	if got := p.Percent(); got != 0.5 {
		t.Errorf("Percent() = %v, want 0.5", got)
	}
	if !strings.Contains(p.Render(), "[2/4]") {
		t.Errorf("Render() missing step count:\n%s", p.Render())
	}

	if NewProgress("").Percent() != 0 {
		t.Error("empty progress should be 0%")
	}
}

func TestStepNote(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", &matrix.TransportError{Op: "read", Err: timeoutErr{}}, "no reply"},
		{"transport", &matrix.TransportError{Op: "read", Err: io.EOF}, "serial error"},
		{"wrapped transport", &matrix.FanOutError{Index: 1, Target: 3, Total: 2, Err: &matrix.TransportError{Op: "read", Err: io.EOF}}, "serial error"},
		{"response", &protocol.ResponseError{Reason: "short"}, "bad reply"},
		{"bare", &matrix.FanOutError{Index: 1, Target: 3, Total: 2, Err: io.EOF}, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stepNote(tt.err); got != tt.want {
				t.Errorf("stepNote() = %q, want %q", got, tt.want)
			}
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestConfirmDangerousOperation(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"I AGREE\n", true},
		{"  I AGREE  \n", true},
		{"I AGREE", true}, // no trailing newline
		{"i agree\n", false},
		{"yes\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			got := FactoryResetConfirmation(strings.NewReader(tt.input), &out)
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "FACTORY RESET") {
				t.Error("warning box not written")
			}
			if !tt.want && tt.input != "" && !strings.Contains(out.String(), "cancelled") {
				t.Error("cancel message not written")
			}
		})
	}
}

func TestResult_Render(t *testing.T) {
	ok := NewSuccessResult("Routed", F("Input", "2"), F("Outputs", "1, 3")).SetWidth(80).Render()
	for _, want := range []string{"SUCCESS", "Routed", "Input:", "1, 3"} {
		if !strings.Contains(ok, want) {
			t.Errorf("success box missing %q:\n%s", want, ok)
		}
	}
	if strings.Index(ok, "Input:") > strings.Index(ok, "Outputs:") {
		t.Error("details out of order")
	}

	fail := NewFailureResult("No reply", errors.New("boom"), []string{"Check the cable"}).SetWidth(80).Render()
	for _, want := range []string{"FAILED", "Error: boom", "Troubleshooting:", "Check the cable"} {
		if !strings.Contains(fail, want) {
			t.Errorf("failure box missing %q:\n%s", want, fail)
		}
	}
}

func TestHeader_Render(t *testing.T) {
	got := NewHeader("route input", "blackbird route 2 1", F("Port", "/dev/ttyUSB0")).SetWidth(80).Render()
	for _, want := range []string{"ROUTE INPUT", "blackbird route 2 1", "Port:", "/dev/ttyUSB0", "─"} {
		if !strings.Contains(got, want) {
			t.Errorf("header missing %q:\n%s", want, got)
		}
	}
}

func TestRunner_Run(t *testing.T) {
	var out bytes.Buffer
	fanOut := &matrix.FanOutError{Index: 1, Target: 3, Completed: 1, Total: 2, Err: &matrix.TransportError{Op: "read", Err: io.EOF}}

	err := NewRunner(RunnerConfig{
		Title:   "Route Input",
		Command: "blackbird route 2 1 3",
		Steps:   []string{"Output 1", "Output 3"},
		Output:  &out,
		Troubleshoot: func(err error) (string, []string) {
			return "Serial communication failed.", []string{"Check the cable"}
		},
	}).SetWidth(80).Run(func() ([]Field, error) {
		return nil, fanOut
	})

	if err != fanOut {
		t.Fatalf("Run() error = %v, want the operation's error", err)
	}
	for _, want := range []string{"ROUTE INPUT", "Output 3", "serial error", "1 of 2", "Check the cable"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	err = NewRunner(RunnerConfig{Title: "Beep", Command: "blackbird beep on", Output: &out}).
		SetWidth(80).
		Run(func() ([]Field, error) { return []Field{F("Beep", "on")}, nil })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Beep complete") || !strings.Contains(out.String(), "Duration:") {
		t.Errorf("success output:\n%s", out.String())
	}
}

type testLabels struct{}

func (testLabels) InputLabel(n int) string  { return map[int]string{2: "PS5"}[n] + "-in" }
func (testLabels) OutputLabel(n int) string { return "out" }

func TestRenderSnapshot(t *testing.T) {
	s := &matrix.Snapshot{
		Power: true,
		Beep:  false,
		Outputs: []matrix.PortStatus{
			{Port: 1, Input: 2, Connected: true},
		},
		Inputs: []matrix.PortStatus{
			{Port: 2, Connected: true, EDID: protocol.EDID4K30HDAudio, EDIDName: protocol.EDID4K30HDAudio.String()},
		},
	}

	got := RenderSnapshot(s, nil)
	for _, want := range []string{"Power:", "on", "off", "Output 1", "Input 2", "yes", "12", "4K2K30 HD Audio 7.1"} {
		if !strings.Contains(got, want) {
			t.Errorf("snapshot missing %q:\n%s", want, got)
		}
	}

	labelled := RenderSnapshot(s, testLabels{})
	if !strings.Contains(labelled, "PS5-in") {
		t.Errorf("labels not used:\n%s", labelled)
	}
}

func TestRenderRoutesAndProfiles(t *testing.T) {
	routes := RenderRoutes([]matrix.Route{{Output: 1, Input: 3}, {Output: 2, Input: 4}}, nil)
	for _, want := range []string{"OUTPUT", "SOURCE", "Output 2", "Input 4"} {
		if !strings.Contains(routes, want) {
			t.Errorf("routes missing %q:\n%s", want, routes)
		}
	}

	profiles := RenderEDIDProfiles()
	for _, p := range protocol.EDIDProfiles() {
		if !strings.Contains(profiles, p.String()) {
			t.Errorf("profile list missing %q", p.String())
		}
	}
}
