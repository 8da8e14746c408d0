package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nodeAccess/internal/access"
	"nodeAccess/internal/config"
	"nodeAccess/internal/server"
	"nodeAccess/internal/webhook"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := setupEnvironment(ctx, cfg.Config, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	requester, err := access.NewRequester(env.transactor, env.addrs, logger)
	if err != nil {
		return err
	}

	srv := server.New(
		cfg.Listen,
		requester,
		webhook.NewResolver(cfg.PoolEventSignature),
		env.recorder(env.transactor.ChainID()),
		logger,
	)

	logger.Info("serve start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("listen", cfg.Listen),
		zap.String("account", env.transactor.From().Hex()),
		zap.String("access_gate", env.addrs.AccessGate.Hex()),
		zap.String("pool_event_signature", cfg.PoolEventSignature),
	)

	return srv.Run(ctx)
}
