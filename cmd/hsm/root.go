package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ha1tch/hsm-toolkit/pkg/logging"
)

const usageExamples = `  hsm new door.hsm --name Door --children 2
  hsm info door.hsm
  hsm render door.hsm -o door.png
  hsm dot door.hsm | dot -Tpng -o door.png
  hsm query door.hsm '.transitions[].label'
  hsm convert door.hsm -o door.json`

// globals holds flag values shared by every subcommand.
type globals struct {
	verbose bool
	log     *slog.Logger
}

func newRootCommand() *cobra.Command {
	g := &globals{log: logging.Discard()}

	root := &cobra.Command{
		Use:     "hsm",
		Short:   "hsm is a toolkit for hierarchical state diagrams",
		Long:    `hsm creates, inspects, converts and renders hierarchical state diagram files (.hsm).`,
		Example: usageExamples,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if g.verbose {
				level = slog.LevelDebug
			}
			g.log = logging.New(cmd.ErrOrStderr(), level)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log layout and structural changes to stderr")

	root.AddCommand(
		newNewCommand(g),
		newInfoCommand(g),
		newValidateCommand(g),
		newConvertCommand(g),
		newRenderCommand(g),
		newDotCommand(g),
		newQueryCommand(g),
	)
	root.CompletionOptions.HiddenDefaultCmd = true
	return root
}
