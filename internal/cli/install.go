package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/safeproxy/internal/config"
	"github.com/user/safeproxy/internal/core"
	"github.com/user/safeproxy/internal/launchd"
	"github.com/user/safeproxy/internal/logger"
)

var installFlags struct {
	host              string
	port              int
	service           string
	trustedLocation   string
	untrustedLocation string
	trusted           []string
	skipCheck         bool
	noAgent           bool
}

func init() {
	f := installCmd.Flags()
	f.StringVar(&installFlags.host, "host", "", "SSH connection (server name or user@server)")
	f.IntVar(&installFlags.port, "port", 0, "local SOCKS port (default 9999)")
	f.StringVar(&installFlags.service, "service", "", "network service to proxy (default Wi-Fi)")
	f.StringVar(&installFlags.trustedLocation, "trusted-location", "", "network location used on trusted networks")
	f.StringVar(&installFlags.untrustedLocation, "untrusted-location", "", "network location used on untrusted networks")
	f.StringSliceVar(&installFlags.trusted, "trust", nil, "trusted SSID or BSSID (repeatable; default: the current network)")
	f.BoolVar(&installFlags.skipCheck, "skip-check", false, "do not test the SSH connection")
	f.BoolVar(&installFlags.noAgent, "no-agent", false, "save the config but do not register the LaunchAgent")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Write the config, register the LaunchAgent, and apply the current network",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		mgr := config.NewManager(resolvedConfigPath())
		_, statErr := os.Stat(mgr.Path())
		fresh := os.IsNotExist(statErr)
		if err := mgr.LoadOrDefault(); err != nil {
			return err
		}
		cfg := *mgr.Get()
		cfg.Trust.TrustedNames = append([]string(nil), cfg.Trust.TrustedNames...)
		applyInstallFlags(&cfg)
		if err := cfg.SSH.Validate(); err != nil {
			return fmt.Errorf("ssh: %w (pass --host)", err)
		}

		log, err := openLog()
		if err != nil {
			return err
		}
		defer log.Close()

		// Wire against the unsaved config to sample the network and test ssh.
		a := newApp(&cfg, log)

		if installFlags.trustedLocation == "" && (fresh || cfg.Trust.TrustedLocation == "") {
			cfg.Trust.TrustedLocation = trustedLocationFor(ctx, &cfg, a.driver)
			fmt.Fprintf(out, "Using %q as the trusted location\n", cfg.Trust.TrustedLocation)
		}

		if len(cfg.Trust.TrustedNames) == 0 {
			a.ctrl.Refresh(ctx)
			status := a.ctrl.GetStatusPayload()
			if !status.LinkUp {
				return fmt.Errorf("not joined to a wireless network; pass --trust to name trusted networks")
			}
			cfg.Trust.AddTrusted(status.SSID, status.BSSID)
			fmt.Fprintf(out, "Trusting current network %s\n", status.SSID)
		}

		if !installFlags.skipCheck && a.tunnel != nil {
			fmt.Fprintf(out, "Testing connectivity to %s...\n", cfg.SSH.Host)
			if err := a.tunnel.Check(ctx, 15*time.Second); err != nil {
				return fmt.Errorf("that ssh host was no good: %w", err)
			}
		}

		if err := mgr.Update(&cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved configuration to %s\n", mgr.Path())

		if !installFlags.noAgent {
			program, err := os.Executable()
			if err != nil {
				return fmt.Errorf("cannot determine executable path: %w", err)
			}
			if resolved, err := filepath.EvalSymlinks(program); err == nil {
				program = resolved
			}
			inst, err := newInstaller(cfg.Monitor.CommandTimeout.Std())
			if err != nil {
				return err
			}
			agent := launchd.NewAgent(program, logger.DefaultPath(), cfg.Monitor.WatchPaths)
			if configPath != "" {
				abs, err := filepath.Abs(configPath)
				if err != nil {
					return err
				}
				agent.Args = append(agent.Args, "--config", abs)
			}
			if err := inst.Install(ctx, agent); err != nil {
				return err
			}
			fmt.Fprintf(out, "Registered %s\n", inst.PlistPath)
		}

		// Choose the right mode for the current network and get going.
		a = newApp(mgr.Get(), log)
		if err := a.ctrl.Init(ctx); err != nil {
			return fmt.Errorf("installed, but the first run failed: %w", err)
		}
		fmt.Fprintln(out, "safeproxy installation done!")
		return nil
	},
}

func applyInstallFlags(cfg *config.Config) {
	if installFlags.host != "" {
		cfg.SSH.Host = installFlags.host
	}
	if installFlags.port != 0 {
		cfg.SSH.SOCKSPort = installFlags.port
	}
	if installFlags.service != "" {
		cfg.Proxy.Service = installFlags.service
	}
	if installFlags.trustedLocation != "" {
		cfg.Trust.TrustedLocation = installFlags.trustedLocation
	}
	if installFlags.untrustedLocation != "" {
		cfg.Trust.UntrustedLocation = installFlags.untrustedLocation
	}
	cfg.Trust.AddTrusted(installFlags.trusted...)
}

// currentLocation reports the active network location.
type currentLocation interface {
	CurrentLocation(ctx context.Context) (string, error)
}

// trustedLocationFor picks the active network location as the trusted one.
// It keeps the configured value when the location cannot be read or is the
// untrusted location itself.
func trustedLocationFor(ctx context.Context, cfg *config.Config, locs currentLocation) string {
	fallback := cfg.Trust.TrustedLocation
	if fallback == "" {
		fallback = config.DefaultConfig().Trust.TrustedLocation
	}
	name, err := locs.CurrentLocation(ctx)
	if err != nil || name == "" || name == cfg.Trust.UntrustedLocation {
		return fallback
	}
	return name
}

func newInstaller(timeout time.Duration) (*launchd.Installer, error) {
	plist, err := launchd.AgentPath()
	if err != nil {
		return nil, err
	}
	return &launchd.Installer{PlistPath: plist, Runner: launchd.Launchctl{Timeout: timeout}}, nil
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Bring the proxy down, remove the LaunchAgent, and delete safeproxy files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		timeout, err := shutdownProxy(cmd, out)
		if err != nil {
			return err
		}

		inst, err := newInstaller(timeout)
		if err != nil {
			return err
		}
		if inst.Installed() {
			fmt.Fprintln(out, "Uninstalling safeproxy from launchd...")
			if err := inst.Uninstall(ctx); err != nil {
				return err
			}
		}

		removed, err := removeStateFiles(config.StatePath("*"))
		for _, f := range removed {
			fmt.Fprintf(out, "Removed %s\n", f)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Uninstall finished.")
		return nil
	},
}

// shutdownProxy brings the proxy and tunnel down if they are running. A
// missing or broken config is reported and skipped so uninstall can still
// clean up. It returns the command timeout to use for the rest.
func shutdownProxy(cmd *cobra.Command, out io.Writer) (time.Duration, error) {
	ctx := cmd.Context()
	a, err := loadApp()
	if err != nil {
		fmt.Fprintf(out, "Skipping proxy shutdown: %v\n", err)
		return config.DefaultConfig().Monitor.CommandTimeout.Std(), nil
	}
	defer a.close()

	if err := a.ctrl.Observe(ctx); err != nil {
		fmt.Fprintf(out, "Could not query proxy state: %v\n", err)
	}
	if a.ctrl.ProxyRunning() {
		fmt.Fprintln(out, "Shutting down SOCKS proxy...")
		if err := a.ctrl.BringProxy(ctx, core.Down); err != nil {
			return 0, err
		}
	} else if a.tunnel != nil && a.tunnel.Running() {
		_ = a.tunnel.Down(ctx)
	}
	return a.cfg.Monitor.CommandTimeout.Std(), nil
}

// removeStateFiles deletes every file matching pattern. It keeps going
// past failures and reports the first.
func removeStateFiles(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	var removed []string
	var firstErr error
	for _, f := range matches {
		if err := os.Remove(f); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed = append(removed, f)
	}
	return removed, firstErr
}
