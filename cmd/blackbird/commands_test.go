package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Cody994/21905-SerialController/internal/emulator"
	"github.com/Cody994/21905-SerialController/internal/matrix"
	"github.com/Cody994/21905-SerialController/internal/remote"
	"github.com/Cody994/21905-SerialController/internal/server"
)

// execute runs one command line against a fresh command tree and config path
func execute(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out, &out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func tempConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestRouteJSON(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []matrix.Route
	}{
		{"one output", []string{"route", "2", "1"}, []matrix.Route{{Output: 1, Input: 2}}},
		{"several outputs", []string{"route", "3", "4", "1"}, []matrix.Route{{Output: 4, Input: 3}, {Output: 1, Input: 3}}},
		{"all outputs", []string{"route", "1", "--all"}, []matrix.Route{
			{Output: 1, Input: 1}, {Output: 2, Input: 1}, {Output: 3, Input: 1}, {Output: 4, Input: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--simulate", "--format", "json"}, tt.args...)
			out, err := execute(t, tempConfig(t), "", args...)
			if err != nil {
				t.Fatalf("execute: %v\n%s", err, out)
			}
			var got []matrix.Route
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("decode %q: %v", out, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("route %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRouteErrors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantOperand bool
	}{
		{"outputs and all", []string{"route", "2", "1", "--all"}, false},
		{"no outputs", []string{"route", "2"}, false},
		{"not a number", []string{"route", "two", "1"}, false},
		{"input out of range", []string{"route", "5", "1"}, true},
		{"output out of range", []string{"route", "1", "0"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--simulate", "--format", "json"}, tt.args...)
			_, err := execute(t, tempConfig(t), "", args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := matrix.IsInvalidOperand(err); got != tt.wantOperand {
				t.Errorf("IsInvalidOperand = %v, want %v (err: %v)", got, tt.wantOperand, err)
			}
		})
	}
}

func TestRouteDetailed(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "--simulate", "route", "2", "1", "3")
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	for _, want := range []string{"simulated matrix", "Output 1", "Output 3", "complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatusJSON(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "--simulate", "--format", "json", "status")
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, out)
	}
	var s matrix.Snapshot
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !s.Power || !s.Beep {
		t.Errorf("power=%v beep=%v, want both on", s.Power, s.Beep)
	}
	if len(s.Outputs) != 4 || len(s.Inputs) != 4 {
		t.Fatalf("got %d outputs, %d inputs", len(s.Outputs), len(s.Inputs))
	}
	if s.Outputs[2].Input != 3 {
		t.Errorf("output 3 source = %d, want 3", s.Outputs[2].Input)
	}
}

func TestQueriesJSON(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"power", []string{"power", "status"}, `"power": true`},
		{"beep", []string{"beep", "status"}, `"beep": true`},
		{"device type", []string{"device-type"}, `"device_type": 33`},
		{"edid get", []string{"edid", "get", "2"}, `"input": 2`},
		{"routing", []string{"routing", "4"}, `"output": 4`},
		{"power off", []string{"power", "off"}, `"power": false`},
		{"beep on", []string{"beep", "on"}, `"beep": true`},
		{"edid set", []string{"edid", "set", "12", "1"}, `"profile": 12`},
		{"edid copy", []string{"edid", "copy", "2", "0"}, `"output": 2`},
		{"reboot", []string{"reboot"}, `"rebooted": true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--simulate", "--format", "json"}, tt.args...)
			out, err := execute(t, tempConfig(t), "", args...)
			if err != nil {
				t.Fatalf("execute: %v\n%s", err, out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestDeviceTypeDetailed(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "--simulate", "device-type")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "0x21") {
		t.Errorf("output = %q, want 0x21", out)
	}
}

func TestEDIDProfiles(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "--format", "json", "edid", "profiles")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var list []edidResult
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 15 {
		t.Fatalf("got %d profiles, want 15", len(list))
	}
	if list[0].Profile != 1 || list[14].Profile != 15 {
		t.Errorf("profiles run %d-%d, want 1-15", list[0].Profile, list[14].Profile)
	}
}

func TestSwitchArgument(t *testing.T) {
	_, err := execute(t, tempConfig(t), "", "--simulate", "power", "maybe")
	if err == nil || !strings.Contains(err.Error(), "on or off") {
		t.Errorf("err = %v, want on/off complaint", err)
	}
}

func TestFactoryReset(t *testing.T) {
	t.Run("json needs yes", func(t *testing.T) {
		_, err := execute(t, tempConfig(t), "", "--simulate", "--format", "json", "factory-reset")
		if err == nil || !strings.Contains(err.Error(), "--yes") {
			t.Errorf("err = %v, want --yes complaint", err)
		}
	})

	t.Run("wrong phrase cancels", func(t *testing.T) {
		out, err := execute(t, tempConfig(t), "no\n", "--simulate", "factory-reset")
		var shown *shownError
		if !errors.As(err, &shown) {
			t.Fatalf("err = %v, want shownError", err)
		}
		if !strings.Contains(out, "Operation cancelled") {
			t.Errorf("output missing cancellation:\n%s", out)
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		out, err := execute(t, tempConfig(t), "I AGREE\n", "--simulate", "factory-reset")
		if err != nil {
			t.Fatalf("execute: %v\n%s", err, out)
		}
	})

	t.Run("yes flag", func(t *testing.T) {
		out, err := execute(t, tempConfig(t), "", "--simulate", "--format", "json", "factory-reset", "--yes")
		if err != nil {
			t.Fatalf("execute: %v\n%s", err, out)
		}
		if !strings.Contains(out, `"factory_reset": true`) {
			t.Errorf("output = %s", out)
		}
	})
}

func TestOpenFailure(t *testing.T) {
	// No port configured and no --simulate
	out, err := execute(t, tempConfig(t), "", "reboot")
	var shown *shownError
	if !errors.As(err, &shown) {
		t.Fatalf("err = %v, want shownError", err)
	}
	if !strings.Contains(out, "Could not open the serial port") {
		t.Errorf("output missing failure box:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	path := tempConfig(t)

	out, err := execute(t, path, "", "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "not created yet") {
		t.Errorf("show before init = %q", out)
	}

	if _, err := execute(t, path, "", "config", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := execute(t, path, "", "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := execute(t, path, "", "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	if _, err := execute(t, path, "", "config", "label", "output", "2", "Projector"); err != nil {
		t.Fatalf("label: %v", err)
	}
	if _, err := execute(t, path, "", "config", "label", "output", "9", "Nope"); err == nil {
		t.Error("label on port 9 should fail")
	}

	out, err = execute(t, path, "", "--simulate", "route", "1", "2")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if !strings.Contains(out, "Output 2 (Projector)") {
		t.Errorf("route output does not use the label:\n%s", out)
	}
}

func TestFlagOverridesConfig(t *testing.T) {
	path := tempConfig(t)
	if _, err := execute(t, path, "", "config", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}

	out, err := execute(t, path, "", "--format", "json", "--port", "/dev/ttyTEST", "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	// config show reports the file, not the flag
	if strings.Contains(out, "/dev/ttyTEST") {
		t.Errorf("flag leaked into the file view:\n%s", out)
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := execute(t, tempConfig(t), "", "--format", "xml", "version")
	if err == nil || !strings.Contains(err.Error(), "--format") {
		t.Errorf("err = %v, want format complaint", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, tempConfig(t), "", "--format", "json", "version")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info["version"] == "" {
		t.Errorf("version missing from %v", info)
	}
}

func TestParseSwitch(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"ON", true, false},
		{"1", true, false},
		{"off", false, false},
		{"false", false, false},
		{"standby", false, true},
	}
	for _, tt := range tests {
		got, err := parseSwitch(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSwitch(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSwitch(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRemoteCommands(t *testing.T) {
	dev := emulator.New()
	ts := httptest.NewServer(server.New(matrix.New(dev), server.Config{}).Handler())
	defer ts.Close()

	path := tempConfig(t)
	out, err := execute(t, path, "", "--format", "json", "remote", "--url", ts.URL, "route", "4", "1", "2")
	if err != nil {
		t.Fatalf("remote route: %v\n%s", err, out)
	}
	if got := dev.State().Routes; got != [4]int{4, 4, 3, 4} {
		t.Errorf("routes = %v", got)
	}

	out, err = execute(t, path, "", "--format", "json", "remote", "--url", ts.URL, "status")
	if err != nil {
		t.Fatalf("remote status: %v", err)
	}
	var s matrix.Snapshot
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Outputs[0].Input != 4 {
		t.Errorf("output 1 source = %d, want 4", s.Outputs[0].Input)
	}

	out, err = execute(t, path, "", "remote", "--url", ts.URL, "route", "9", "1")
	var shown *shownError
	if !errors.As(err, &shown) {
		t.Fatalf("err = %v, want shownError", err)
	}
	if kind := remote.ErrorKind(shown.err); kind != server.KindInvalidOperand {
		t.Errorf("error kind = %q, want %q", kind, server.KindInvalidOperand)
	}
	if !strings.Contains(shown.err.Error(), "out of range") {
		t.Errorf("error = %v, want the bridge's range message", shown.err)
	}
	if !strings.Contains(out, "ROUTE INPUT") {
		t.Errorf("failure box missing:\n%s", out)
	}
}
