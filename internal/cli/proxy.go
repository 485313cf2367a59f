package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/safeproxy/internal/core"
)

func init() {
	rootCmd.AddCommand(proxyCmd)
}

var proxyCmd = &cobra.Command{
	Use:       "proxy up|down",
	Short:     "Force the SOCKS proxy and tunnel up or down",
	Long:      "Force the proxy regardless of the current network. The override lasts until the next network change.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := core.ParseDirection(args[0])
		if err != nil {
			return err
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.ctrl.BringProxy(cmd.Context(), dir); err != nil {
			return fmt.Errorf("failed to bring proxy %s: %w", dir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "proxy %s\n", dir)
		return nil
	},
}
