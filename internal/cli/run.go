package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify the current network once and apply the matching proxy mode",
	Long:  "Run one cycle and exit. This is what the LaunchAgent invokes on every network change.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !interactive() {
			a.log.RedirectStderr()
		}
		defer a.log.Recover("run")
		return a.ctrl.Resume(cmd.Context())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run in the foreground, re-checking on every network change and poll interval",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.log.Info("watching (poll every %s)", a.cfg.Monitor.PollInterval.Std())
		err = a.watchLoop(ctx)
		a.log.Info("watch stopped")
		return err
	},
}
