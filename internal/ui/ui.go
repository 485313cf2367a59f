// Package ui provides the menu-bar tray for safeproxy.
package ui

import (
	"context"
	"fmt"

	"fyne.io/systray"

	"github.com/user/safeproxy/internal/core"
	"github.com/user/safeproxy/internal/logger"
)

// Tray shows the controller state in the menu bar and offers manual
// overrides.
type Tray struct {
	ctrl       *core.Controller
	log        *logger.Logger
	loop       func(ctx context.Context) error
	configPath string

	ctx    context.Context
	cancel context.CancelFunc

	mStatus  *systray.MenuItem
	mNetwork *systray.MenuItem
	mUp      *systray.MenuItem
	mDown    *systray.MenuItem
	mPoll    *systray.MenuItem
	mLog     *systray.MenuItem
	mConfig  *systray.MenuItem
	mQuit    *systray.MenuItem
}

// New creates a tray for ctrl. loop is the monitoring loop; it runs in the
// background until the tray quits.
func New(ctrl *core.Controller, log *logger.Logger, loop func(ctx context.Context) error, configPath string) *Tray {
	return &Tray{ctrl: ctrl, log: log, loop: loop, configPath: configPath}
}

// Run starts the tray and blocks until Quit is chosen.
func (t *Tray) Run(ctx context.Context) {
	t.ctx, t.cancel = context.WithCancel(ctx)
	defer t.cancel()

	t.log.Info("tray starting")
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconFor(stateUnknown))
	systray.SetTitle("safeproxy")
	systray.SetTooltip("safeproxy")

	t.mStatus = systray.AddMenuItem("Starting...", "")
	t.mStatus.Disable()
	t.mNetwork = systray.AddMenuItem("", "")
	t.mNetwork.Disable()

	systray.AddSeparator()

	t.mUp = systray.AddMenuItem("Proxy up", "Force the proxy on until the network changes")
	t.mDown = systray.AddMenuItem("Proxy down", "Force the proxy off until the network changes")
	t.mPoll = systray.AddMenuItem("Check network now", "")

	systray.AddSeparator()

	t.mLog = systray.AddMenuItem("Show log", "")
	t.mConfig = systray.AddMenuItem("Edit config", "")

	systray.AddSeparator()

	t.mQuit = systray.AddMenuItem("Quit", "")

	// Listener is set before the loop starts so the first transition shows.
	t.ctrl.SetStatusListener(t.update)
	t.update(t.ctrl.GetStatusPayload())

	t.log.SafeGo("watch-loop", func() {
		if err := t.loop(t.ctx); err != nil {
			t.log.Error("watch loop stopped: %v", err)
		}
	})

	t.log.SafeGo("systray-menu-loop", t.menuLoop)
}

func (t *Tray) menuLoop() {
	for {
		select {
		case <-t.mUp.ClickedCh:
			t.log.SafeGo("proxy-up", func() { t.bringProxy(core.Up) })
		case <-t.mDown.ClickedCh:
			t.log.SafeGo("proxy-down", func() { t.bringProxy(core.Down) })
		case <-t.mPoll.ClickedCh:
			t.log.SafeGo("poll", func() {
				t.ctrl.PollOnce(t.ctx)
				t.update(t.ctrl.GetStatusPayload())
			})
		case <-t.mLog.ClickedCh:
			openFile(t.log, t.log.Path())
		case <-t.mConfig.ClickedCh:
			openFile(t.log, t.configPath)
		case <-t.mQuit.ClickedCh:
			systray.Quit()
			return
		case <-t.ctx.Done():
			return
		}
	}
}

func (t *Tray) onExit() {
	t.log.Info("tray shutting down")
	t.cancel()
}

func (t *Tray) bringProxy(dir core.Direction) {
	t.log.Info("user requested proxy %s", dir)
	if err := t.ctrl.BringProxy(t.ctx, dir); err != nil {
		t.log.Error("failed to bring proxy %s: %v", dir, err)
	}
}

func (t *Tray) update(status *core.StatusPayload) {
	defer t.log.Recover("update")
	if status == nil || t.mStatus == nil {
		return
	}

	v := describe(status)
	systray.SetIcon(iconFor(v.state))
	systray.SetTooltip(v.tooltip)
	t.mStatus.SetTitle(v.title)
	t.mNetwork.SetTitle(v.network)

	if status.ProxyEngaged {
		t.mUp.Disable()
		t.mDown.Enable()
	} else {
		t.mUp.Enable()
		t.mDown.Disable()
	}
}

// view is the text and icon for a status.
type view struct {
	state   iconState
	title   string
	network string
	tooltip string
}

func describe(status *core.StatusPayload) view {
	v := view{network: "No wireless link"}
	if status.LinkUp {
		v.network = "Network: " + status.SSID
	}

	proxyState := "off"
	if status.ProxyEngaged {
		proxyState = "on"
	}

	switch {
	case status.Error != "":
		v.state = stateError
		v.title = "Error: " + status.Error
	case !status.Settled:
		v.state = stateUnknown
		v.title = "Checking network..."
	case status.ProxyEngaged:
		v.state = stateProtected
		v.title = fmt.Sprintf("%s, proxy on", status.Classification)
	default:
		v.state = stateDirect
		v.title = fmt.Sprintf("%s, proxy off", status.Classification)
	}

	v.tooltip = fmt.Sprintf("safeproxy\n%s\nProxy %s", v.network, proxyState)
	return v
}
