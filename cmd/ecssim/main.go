package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PHoulding/ecs-clustering/internal/logging"
	"github.com/PHoulding/ecs-clustering/internal/telemetry"
	"github.com/PHoulding/ecs-clustering/internal/ui"
)

func main() {
	telemetry.InstallNoop()
	ui.Init()

	var debug bool
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "ecssim",
		Short:         "Discrete-event simulator for the ECS clustering protocol",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(runCmd())
	root.AddCommand(reportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
