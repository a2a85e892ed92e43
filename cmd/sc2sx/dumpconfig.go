package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"sc2sx/config"
	"sc2sx/state"
)

func dumpConfig(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	args := cmd.Args().Slice()
	if len(args) > 1 {
		env.Log.Warn("Extra arguments ignored", zap.Strings("args", args[1:]))
	}

	var (
		data []byte
		kind = "actual"
	)
	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to prepare configuration: %w", err)
	}

	var (
		out  io.Writer = cmd.Root().Writer
		dest           = "STDOUT"
	)
	if len(args) > 0 {
		dest = args[0]
		f, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("unable to create %s: %w", dest, err)
		}
		defer func() {
			if er := f.Close(); er != nil && err == nil {
				err = er
			}
		}()
		out = f
	}
	if out == nil {
		out = os.Stdout
	}

	env.Log.Info("Writing configuration", zap.String("kind", kind), zap.String("to", dest))
	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
