package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"sc2sx/config"
	"sc2sx/convert"
	"sc2sx/misc"
	"sc2sx/state"
)

const convertHelp = `%s
SOURCE:
    any mix of:
        "[path]file.yaml"      single document (*.yaml or *.yml)
        "[path]directory"      every document found under directory, recursively
        "[path]archive.zip"    every document packed in zip archive

    A document lists styled components declared in one source file. For each
    component it gives name, rendered element, css template text where ${n}
    marks n-th interpolation, what every interpolated expression is and how
    the component is used. Results are written next to the source layout
    under --out unless --nodirs is given.
`

const dumpConfigHelp = `%s

DESTINATION:
    file to write configuration to, STDOUT when omitted

Without --default prints configuration in effect: embedded defaults merged
with values from --config file.
`

func newApp(status *exitStatus) *cli.Command {
	return &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "converts CSS-in-JS styled components into atomic style objects",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          setup,
		After:           teardown,
		OnUsageError:    passUsageError,
		ExitErrHandler:  status.logExitError,
		CommandNotFound: unknownCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "read configuration from YAML `FILE`"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log everything and pack logs, inputs and result dumps into report archive"},
		},
		Commands: []*cli.Command{
			convertCommand(),
			dumpConfigCommand(),
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:         "convert",
		Usage:        "Converts styled component documents",
		ArgsUsage:    "SOURCE...",
		OnUsageError: passUsageError,
		Action:       convert.Run,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "put results into `DIR` (default: current directory)"},
			&cli.StringFlag{Name: "to",
				Usage: "result `FORMAT`, one of " + strings.Join(config.OutputFmtNames(), ", ") + " (default: from configuration)"},
			&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "put every result directly into output directory"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace results left by previous runs"},
		},
		CustomHelpTemplate: fmt.Sprintf(convertHelp, cli.CommandHelpTemplate),
	}
}

func dumpConfigCommand() *cli.Command {
	return &cli.Command{
		Name:         "dumpconfig",
		Usage:        "Prints configuration as YAML",
		ArgsUsage:    "[DESTINATION]",
		OnUsageError: passUsageError,
		Action:       dumpConfig,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "default", Usage: "print embedded defaults instead"},
		},
		CustomHelpTemplate: fmt.Sprintf(dumpConfigHelp, cli.CommandHelpTemplate),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	var status exitStatus
	err := newApp(&status).Run(ctx, os.Args)
	stop()

	if err != nil {
		if !status.logged {
			fmt.Fprintf(os.Stderr, "%s: %v\n", misc.GetAppName(), err)
		}
		os.Exit(1)
	}
}
