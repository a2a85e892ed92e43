package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"sc2sx/config"
	"sc2sx/misc"
	"sc2sx/state"
)

// setup runs after flags are parsed. It fills the environment every command
// works with: configuration, optional debug report and logger.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help only
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)
	cfgFile := cmd.String("config")

	cfg, err := config.LoadConfiguration(cfgFile)
	if err != nil {
		return ctx, fmt.Errorf("unable to load configuration: %w", err)
	}
	env.Cfg = cfg

	if cmd.Bool("debug") {
		if env.Rpt, err = cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to create debug report: %w", err)
		}
		if cfgFile != "" {
			if data, err := config.Dump(cfg); err == nil {
				env.Rpt.StoreData("config/"+filepath.Base(cfgFile), data)
			}
		}
	}

	if env.Log, err = cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to set up logging: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Starting",
		zap.Strings("args", os.Args),
		zap.String("version", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))
	switch {
	case env.Rpt != nil:
		env.Log.Info("Debug report requested", zap.String("location", env.Rpt.Name()))
	case cfgFile == "":
		env.Log.Info("No configuration file, using defaults")
	}
	return ctx, nil
}

// teardown closes what setup opened. Logging is finished by the time the
// report is written, so its errors are only returned.
func teardown(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Finished", zap.Duration("elapsed", env.Uptime()), zap.Strings("args", cmd.Args().Slice()))
	}
	env.RestoreStdLog()

	if er := env.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to write debug report: %w", er))
	}

	if env.Cfg == nil || env.Cfg.Logging.FileLogger.Destination == "" {
		return err
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})
	crash := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
	if fi, er := os.Stat(crash); er == nil && fi.Size() == 0 {
		if er := os.Remove(crash); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to remove empty crash log %s: %w", crash, er))
		}
	}
	return err
}

// exitStatus remembers whether the final error already went to the log.
type exitStatus struct {
	logged bool
}

// logExitError is called while environment is still alive.
func (s *exitStatus) logExitError(ctx context.Context, _ *cli.Command, err error) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Error("Finished with error", zap.Error(err))
		s.logged = true
	}
}

func passUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func unknownCommand(ctx context.Context, _ *cli.Command, name string) {
	if log := state.EnvFromContext(ctx).Log; log != nil {
		log.Warn("Unknown command ignored", zap.String("command", name))
	}
}
