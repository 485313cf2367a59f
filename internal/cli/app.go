package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/user/safeproxy/internal/config"
	"github.com/user/safeproxy/internal/core"
	"github.com/user/safeproxy/internal/logger"
	"github.com/user/safeproxy/internal/proxy"
	"github.com/user/safeproxy/internal/tunnel"
	"github.com/user/safeproxy/internal/watch"
	"github.com/user/safeproxy/internal/wireless"
)

// app bundles the collaborators every long-running command needs.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	driver *proxy.Driver
	tunnel *tunnel.SSHTunnel
	ctrl   *core.Controller
}

// loadApp loads the configuration and wires the controller. The returned
// app owns the log file; call close when done.
func loadApp() (*app, error) {
	mgr := config.NewManager(resolvedConfigPath())
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	log, err := openLog()
	if err != nil {
		return nil, err
	}
	return newApp(mgr.Get(), log), nil
}

func openLog() (*logger.Logger, error) {
	log, err := logger.New(logger.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	log.SetDebug(verbose)
	if verbose {
		log.AddListener(func(line string) {
			fmt.Fprintln(os.Stderr, line)
		})
	}
	return log, nil
}

func newApp(cfg *config.Config, log *logger.Logger) *app {
	timeout := cfg.Monitor.CommandTimeout.Std()

	probe := wireless.NewProbe(wireless.NewSystemQuery(timeout), log, timeout)
	driver := proxy.NewDriver(proxy.NewNetworkSetup(timeout))

	a := &app{cfg: cfg, log: log, driver: driver}

	opts := core.Options{
		Locations:         driver,
		UntrustedLocation: cfg.Trust.UntrustedLocation,
	}
	if cfg.SSH.Host != "" {
		a.tunnel = tunnel.New(cfg.SSH.Host, cfg.SSH.SOCKSPort, cfg.SSH.ExtraArgs, config.StatePath("pid"))
		opts.Tunnel = a.tunnel
	}

	a.ctrl = core.NewController(cfg.TrustConfig(), probe, driver, log, core.ProxySettings{
		Service: cfg.Proxy.Service,
		Host:    cfg.Proxy.Host,
		Port:    cfg.SSH.SOCKSPort,
	}, opts)
	return a
}

// trigger returns the poll scheduler for the configured interval.
func (a *app) trigger() *watch.Trigger {
	m := a.cfg.Monitor
	return watch.NewTrigger(m.PollInterval.Std(), m.Debounce.Std(), m.WatchPaths, a.log)
}

// watchLoop runs Init and then PollOnce on every trigger until ctx ends.
func (a *app) watchLoop(ctx context.Context) error {
	if err := a.ctrl.Init(ctx); err != nil {
		a.log.Warning("initial transition failed, retrying on next poll: %v", err)
	}
	return a.trigger().Run(ctx, func(ctx context.Context, reason watch.Reason) {
		a.log.Debug("poll (%s)", reason)
		a.ctrl.PollOnce(ctx)
	})
}

func (a *app) close() {
	a.log.Close()
}
