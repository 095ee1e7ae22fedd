// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// counterd serves the shared counter line protocol on a dual-stack TCP port.
//
// Exit status: 0 after a graceful SIGINT/SIGTERM shutdown, otherwise the
// code of the failed stage (1 config, 2 socket, 3 sockopt, 4 bind,
// 5 listen, 6 reactor, 7 register, 8 wait).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/momentics/hioload-counter/internal/config"
	"github.com/momentics/hioload-counter/internal/log"
	"github.com/momentics/hioload-counter/server"
)

var mainLog = log.NewLogger("counterd")

func main() {
	os.Exit(execute(context.Background(), os.Args[1:]))
}

func execute(ctx context.Context, args []string) int {
	var runErr error
	cmd := newCommand(ctx, &runErr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		if runErr == nil {
			runErr = &server.StageError{Stage: server.StageConfig, Err: err}
		}
	}
	if runErr != nil {
		mainLog.WithError(runErr).Error("fatal")
	}
	return server.ExitCode(runErr)
}

func newCommand(ctx context.Context, runErr *error) *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:           "counterd",
		Short:         "single-threaded shared counter server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				*runErr = &server.StageError{Stage: server.StageConfig, Err: err}
				return *runErr
			}
			if err := log.Setup(cfg.LogLevel, os.Stderr); err != nil {
				*runErr = &server.StageError{Stage: server.StageConfig, Err: err}
				return *runErr
			}
			*runErr = run(ctx, &cfg.Server)
			return *runErr
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Use a configuration file (toml, yaml or json).")
	flags.Uint16P("port", "p", server.DefaultPort, "Set the listening port.")
	flags.String("log-level", "info", "Set the log level (trace, debug, info, warn, error).")
	flags.Bool("resolve-peer-names", false, "Reverse-resolve peer addresses in diagnostics; each lookup blocks the loop up to resolve_timeout.")

	_ = v.BindPFlag(config.KeyPort, flags.Lookup("port"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyResolvePeerNames, flags.Lookup("resolve-peer-names"))
	return cmd
}

// run wires termination signals to the server's context and blocks until
// the loop exits.
func run(ctx context.Context, cfg *server.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
