package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/safeproxy/internal/config"
	"github.com/user/safeproxy/internal/launchd"
	"github.com/user/safeproxy/internal/proxy"
	"github.com/user/safeproxy/internal/tunnel"
	"github.com/user/safeproxy/internal/wireless"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system readiness and diagnose configuration issues",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []checkResult

	// 1. Config file.
	mgr := config.NewManager(resolvedConfigPath())
	cfgErr := mgr.Load()
	if cfgErr == nil {
		checks = append(checks, checkResult{label: "config", ok: true, detail: mgr.Path()})
	} else {
		checks = append(checks, checkResult{
			label:  "config",
			ok:     false,
			detail: cfgErr.Error(),
			fix:    "safeproxy install --host <server>",
		})
	}

	// 2. Required tools.
	for _, tool := range []string{proxy.NetworkSetupPath, wireless.AirportPath} {
		if _, err := os.Stat(tool); err == nil {
			checks = append(checks, checkResult{label: filepath.Base(tool), ok: true, detail: tool})
		} else {
			checks = append(checks, checkResult{label: filepath.Base(tool), ok: false, detail: "not found at " + tool})
		}
	}
	if sshPath, err := exec.LookPath("ssh"); err == nil {
		checks = append(checks, checkResult{label: "ssh", ok: true, detail: sshPath})
	} else {
		checks = append(checks, checkResult{label: "ssh", ok: false, detail: "not in PATH"})
	}

	if cfgErr == nil {
		cfg := mgr.Get()
		checks = append(checks, knownHostCheck(cfg.SSH.Host))
		checks = append(checks, serviceCheck(cmd, cfg))
		checks = append(checks, checkResult{
			label:  "trusted networks",
			ok:     len(cfg.Trust.TrustedNames) > 0,
			detail: fmt.Sprintf("%d configured", len(cfg.Trust.TrustedNames)),
			fix:    "safeproxy trust add --current",
		})
	}

	// 3. LaunchAgent.
	if plist, err := launchd.AgentPath(); err == nil {
		if _, err := os.Stat(plist); err == nil {
			checks = append(checks, checkResult{label: "launch agent", ok: true, detail: plist})
		} else {
			checks = append(checks, checkResult{
				label:  "launch agent",
				ok:     false,
				detail: "not installed",
				fix:    "safeproxy install",
			})
		}
	}

	// Print results.
	out := cmd.OutOrStdout()
	hasFailures := false
	for _, c := range checks {
		mark := okStyle.Render("\u2713") // ✓
		if !c.ok {
			mark = failStyle.Render("\u2717") // ✗
			hasFailures = true
		}
		line := fmt.Sprintf("%s %-20s %s", mark, c.label+":", c.detail)
		if !c.ok && c.fix != "" {
			line += dimStyle.Render(fmt.Sprintf("  ->  %s", c.fix))
		}
		fmt.Fprintln(out, line)
	}

	if hasFailures {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Some checks failed. Run the suggested commands to fix.")
		return fmt.Errorf("doctor found issues")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "All checks passed.")
	return nil
}

// knownHostCheck confirms the SSH host key is already trusted, since the
// tunnel runs with BatchMode and cannot answer a host key prompt.
func knownHostCheck(target string) checkResult {
	host, port := tunnel.SplitTarget(target)
	home, err := os.UserHomeDir()
	if err != nil {
		return checkResult{label: "known_hosts", ok: false, detail: "cannot determine home directory"}
	}
	path := filepath.Join(home, ".ssh", "known_hosts")
	found, err := tunnel.KnownHost(path, host, port)
	switch {
	case err != nil:
		return checkResult{label: "known_hosts", ok: false, detail: err.Error(), fix: "ssh " + target + " true"}
	case !found:
		return checkResult{label: "known_hosts", ok: false, detail: host + " not present", fix: "ssh " + target + " true"}
	}
	return checkResult{label: "known_hosts", ok: true, detail: host}
}

func serviceCheck(cmd *cobra.Command, cfg *config.Config) checkResult {
	driver := proxy.NewDriver(proxy.NewNetworkSetup(cfg.Monitor.CommandTimeout.Std()))
	services, err := driver.ListServices(cmd.Context())
	if err != nil {
		return checkResult{label: "network service", ok: false, detail: err.Error()}
	}
	for _, s := range services {
		if s == cfg.Proxy.Service {
			return checkResult{label: "network service", ok: true, detail: s}
		}
	}
	return checkResult{
		label:  "network service",
		ok:     false,
		detail: fmt.Sprintf("%q not found (have %s)", cfg.Proxy.Service, strings.Join(services, ", ")),
		fix:    "safeproxy install --service <name>",
	}
}
