package proxy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/user/safeproxy/internal/procutil"
)

// fakeTool records invocations and replies from a script keyed by verb.
type fakeTool struct {
	calls   [][]string
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeTool) Run(_ context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	verb := args[0]
	return []byte(f.outputs[verb]), f.errs[verb]
}

func (f *fakeTool) joined() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = strings.Join(c, " ")
	}
	return out
}

func TestSetEnabledIssuesCommands(t *testing.T) {
	tool := &fakeTool{}
	d := NewDriver(tool)

	if err := d.SetEnabled(context.Background(), true, "Wi-Fi", "localhost", 9999); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := d.SetEnabled(context.Background(), false, "Wi-Fi", "localhost", 9999); err != nil {
		t.Fatalf("disable: %v", err)
	}

	want := []string{
		"-setsocksfirewallproxy Wi-Fi localhost 9999",
		"-setsocksfirewallproxystate Wi-Fi on",
		"-setsocksfirewallproxystate Wi-Fi off",
	}
	got := tool.joined()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSetEnabledIsIdempotent(t *testing.T) {
	tool := &fakeTool{}
	d := NewDriver(tool)

	for i := 0; i < 3; i++ {
		if err := d.SetEnabled(context.Background(), true, "Wi-Fi", "localhost", 9999); err != nil {
			t.Fatalf("enable #%d: %v", i, err)
		}
	}
	if len(tool.calls) != 6 {
		t.Errorf("expected commands re-issued each time, got %d calls", len(tool.calls))
	}
}

func TestSetEnabledNonZeroExit(t *testing.T) {
	tool := &fakeTool{
		outputs: map[string]string{"-setsocksfirewallproxy": "permission denied\n"},
		errs: map[string]error{"-setsocksfirewallproxy": &procutil.ExitError{
			Name: "networksetup", Code: 14, Output: "permission denied"}},
	}
	d := NewDriver(tool)

	err := d.SetEnabled(context.Background(), true, "Wi-Fi", "localhost", 9999)
	var perr *ProxyError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProxyError, got %T %v", err, err)
	}
	if perr.ExitCode != 14 {
		t.Errorf("ExitCode = %d, want 14", perr.ExitCode)
	}
	if perr.Op != "enable" || perr.Service != "Wi-Fi" {
		t.Errorf("op/service = %q/%q", perr.Op, perr.Service)
	}
	if len(tool.calls) != 1 {
		t.Errorf("state command should not run after failed set, calls = %v", tool.joined())
	}
}

func TestUnknownServiceReportedOnZeroExit(t *testing.T) {
	tool := &fakeTool{outputs: map[string]string{
		"-setsocksfirewallproxystate": "AirPort is not a recognized network service.\n** Error: The parameters were not valid.\n",
	}}
	d := NewDriver(tool)

	err := d.SetEnabled(context.Background(), false, "AirPort", "", 0)
	var perr *ProxyError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProxyError, got %v", err)
	}
	if !strings.Contains(perr.Output, "not a recognized network service") {
		t.Errorf("Output = %q", perr.Output)
	}
}

func TestIsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    bool
		wantErr bool
	}{
		{"on", "Enabled: Yes\nServer: localhost\nPort: 9999\nAuthenticated Proxy Enabled: 0\n", true, false},
		{"off", "Enabled: No\nServer: \nPort: 0\nAuthenticated Proxy Enabled: 0\n", false, false},
		{"no field", "something else\n", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &fakeTool{outputs: map[string]string{"-getsocksfirewallproxy": tt.out}}
			got, err := NewDriver(tool).IsEnabled(context.Background(), "Wi-Fi")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsEnabled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthenticatedLineDoesNotMatchEnabled(t *testing.T) {
	tool := &fakeTool{outputs: map[string]string{
		"-getsocksfirewallproxy": "Authenticated Proxy Enabled: 1\nEnabled: No\n",
	}}
	got, err := NewDriver(tool).IsEnabled(context.Background(), "Wi-Fi")
	if err != nil {
		t.Fatalf("IsEnabled: %v", err)
	}
	if got {
		t.Error("IsEnabled = true, want false")
	}
}

func TestSwitchLocation(t *testing.T) {
	tool := &fakeTool{outputs: map[string]string{"-getcurrentlocation": "Untrusted\n"}}
	d := NewDriver(tool)

	if err := d.SwitchLocation(context.Background(), "Home"); err != nil {
		t.Fatalf("SwitchLocation: %v", err)
	}
	loc, err := d.CurrentLocation(context.Background())
	if err != nil {
		t.Fatalf("CurrentLocation: %v", err)
	}
	if loc != "Untrusted" {
		t.Errorf("CurrentLocation = %q", loc)
	}
	if got := tool.joined()[0]; got != "-switchtolocation Home" {
		t.Errorf("switch call = %q", got)
	}
}

func TestListServices(t *testing.T) {
	tool := &fakeTool{outputs: map[string]string{"-listallnetworkservices": "An asterisk (*) denotes that a network service is disabled.\nWi-Fi\n*Bluetooth PAN\nThunderbolt Bridge\n"}}
	got, err := NewDriver(tool).ListServices(context.Background())
	if err != nil {
		t.Fatalf("ListServices: %v", err)
	}
	if len(got) != 2 || got[0] != "Wi-Fi" || got[1] != "Thunderbolt Bridge" {
		t.Errorf("ListServices = %v", got)
	}
}
