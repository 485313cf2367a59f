package cli

import (
	"github.com/spf13/cobra"

	"github.com/user/safeproxy/internal/ui"
)

func init() {
	rootCmd.AddCommand(trayCmd)
}

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run the watch loop with a menu-bar status item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		ui.New(a.ctrl, a.log, a.watchLoop, resolvedConfigPath()).Run(cmd.Context())
		return nil
	},
}
