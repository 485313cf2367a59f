package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/user/safeproxy/internal/core"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print status as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current network, its classification, and the proxy state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		report := statusReport{}
		if err := a.ctrl.Observe(ctx); err != nil {
			report.ProxyError = err.Error()
		}
		a.ctrl.Refresh(ctx)
		report.StatusPayload = a.ctrl.GetStatusPayload()
		report.Service = a.cfg.Proxy.Service
		report.Endpoint = fmt.Sprintf("%s:%d", a.cfg.Proxy.Host, a.cfg.SSH.SOCKSPort)
		if loc, err := a.driver.CurrentLocation(ctx); err == nil {
			report.Location = loc
		}
		if a.tunnel != nil {
			report.TunnelPID = a.tunnel.PID()
			report.Tunnel = "stopped"
			if a.tunnel.Running() {
				report.Tunnel = "running"
			}
		}

		if statusJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}
		report.print(cmd.OutOrStdout())
		return nil
	},
}

type statusReport struct {
	*core.StatusPayload
	Service    string `json:"service"`
	Endpoint   string `json:"endpoint"`
	Location   string `json:"location,omitempty"`
	Tunnel     string `json:"tunnel,omitempty"`
	TunnelPID  int    `json:"tunnel_pid,omitempty"`
	ProxyError string `json:"proxy_error,omitempty"`
}

func (r statusReport) print(w io.Writer) {
	network := "link down"
	if r.LinkUp {
		network = r.SSID
		if r.BSSID != "" {
			network += " (" + r.BSSID + ")"
		}
	}
	proxyState := warnStyle.Render("off")
	switch {
	case r.ProxyError != "":
		proxyState = failStyle.Render("unknown: " + r.ProxyError)
	case r.ProxyEngaged:
		proxyState = okStyle.Render("on")
	}

	fmt.Fprintf(w, "%-16s %s\n", "Network:", network)
	fmt.Fprintf(w, "%-16s %s\n", "Classification:", r.Classification)
	fmt.Fprintf(w, "%-16s %s (%s -> %s)\n", "Proxy:", proxyState, r.Service, r.Endpoint)
	if r.Tunnel != "" {
		tunnelState := r.Tunnel
		if r.TunnelPID > 0 {
			tunnelState += fmt.Sprintf(" (pid %d)", r.TunnelPID)
		}
		fmt.Fprintf(w, "%-16s %s\n", "Tunnel:", tunnelState)
	}
	if r.Location != "" {
		fmt.Fprintf(w, "%-16s %s\n", "Location:", r.Location)
	}
}
