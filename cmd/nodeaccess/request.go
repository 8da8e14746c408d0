package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nodeAccess/internal/access"
	"nodeAccess/internal/config"
	"nodeAccess/internal/webhook"
)

func runRequest(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	body, err := readPayload(cfg.Payload, cmd.InOrStdin())
	if err != nil {
		return err
	}
	target, err := webhook.NewResolver(cfg.PoolEventSignature).Target(body)
	if err != nil {
		return fmt.Errorf("resolve pool: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := setupEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	requester, err := access.NewRequester(env.transactor, env.addrs, logger)
	if err != nil {
		return err
	}

	logger.Info("request start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("account", env.transactor.From().Hex()),
		zap.String("chain_id", env.transactor.ChainID().String()),
		zap.String("access_gate", env.addrs.AccessGate.Hex()),
		zap.Bool("payload", len(body) > 0),
	)

	res, reqErr := requester.Request(ctx, target)
	return reportResult(context.WithoutCancel(ctx), cmd.OutOrStdout(), res, reqErr, env.recorder(env.transactor.ChainID()), logger)
}

// reportResult records and prints a submitted access request, even when a
// later step failed, and returns the request error.
func reportResult(ctx context.Context, out io.Writer, res access.Result, reqErr error, record func(context.Context, access.Result, error) error, logger *zap.Logger) error {
	if reqErr != nil && !res.Submitted() {
		return reqErr
	}
	if err := record(ctx, res, reqErr); err != nil {
		logger.Error("record access request", zap.Error(err), zap.String("access_tx", res.AccessTx.Hex()))
	}
	fmt.Fprintln(out, res.AccessTx.Hex())
	return reqErr
}

func readPayload(path string, stdin io.Reader) ([]byte, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		body, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		return body, nil
	default:
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		return body, nil
	}
}
