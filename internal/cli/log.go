package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/safeproxy/internal/logger"
)

var logClear bool

func init() {
	logCmd.Flags().BoolVar(&logClear, "clear", false, "truncate the log")
	rootCmd.AddCommand(logCmd)
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the transition log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := logger.DefaultPath()
		if logClear {
			log, err := logger.New(path)
			if err != nil {
				return err
			}
			defer log.Close()
			return log.ClearLogs()
		}

		text, err := logger.ReadLogs(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}
