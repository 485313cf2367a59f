package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/safeproxy/internal/config"
)

var trustCurrent bool

func init() {
	trustAddCmd.Flags().BoolVar(&trustCurrent, "current", false, "trust the network you are joined to")
	trustCmd.AddCommand(trustAddCmd, trustRemoveCmd, trustListCmd)
	rootCmd.AddCommand(trustCmd)
}

var trustCmd = &cobra.Command{
	Use:   "trust",
	Short: "Manage the trusted network list (SSIDs or BSSIDs)",
}

var trustAddCmd = &cobra.Command{
	Use:   "add [name...]",
	Short: "Trust one or more networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, cfg, err := editableConfig()
		if err != nil {
			return err
		}

		names := args
		if trustCurrent {
			current, err := currentNetwork(cmd, cfg)
			if err != nil {
				return err
			}
			names = append(names, current)
		}
		if len(names) == 0 {
			return fmt.Errorf("no network names given")
		}

		added := cfg.Trust.AddTrusted(names...)
		if err := mgr.Update(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d network(s) added, %d trusted\n", added, len(cfg.Trust.TrustedNames))
		return nil
	},
}

var trustRemoveCmd = &cobra.Command{
	Use:   "remove name...",
	Short: "Stop trusting one or more networks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, cfg, err := editableConfig()
		if err != nil {
			return err
		}
		removed := cfg.Trust.RemoveTrusted(args...)
		if err := mgr.Update(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d network(s) removed, %d trusted\n", removed, len(cfg.Trust.TrustedNames))
		return nil
	},
}

var trustListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trusted networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := config.NewManager(resolvedConfigPath())
		if err := mgr.Load(); err != nil {
			return err
		}
		for _, name := range mgr.Get().TrustConfig().Identifiers() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// editableConfig loads the config and returns a copy safe to mutate.
func editableConfig() (*config.Manager, *config.Config, error) {
	mgr := config.NewManager(resolvedConfigPath())
	if err := mgr.Load(); err != nil {
		return nil, nil, err
	}
	cfg := *mgr.Get()
	cfg.Trust.TrustedNames = append([]string(nil), cfg.Trust.TrustedNames...)
	return mgr, &cfg, nil
}

// currentNetwork returns the SSID of the joined network.
func currentNetwork(cmd *cobra.Command, cfg *config.Config) (string, error) {
	log, err := openLog()
	if err != nil {
		return "", err
	}
	defer log.Close()

	a := newApp(cfg, log)
	a.ctrl.Refresh(cmd.Context())
	status := a.ctrl.GetStatusPayload()
	if !status.LinkUp || status.SSID == "" {
		return "", fmt.Errorf("not joined to a wireless network")
	}
	return status.SSID, nil
}
