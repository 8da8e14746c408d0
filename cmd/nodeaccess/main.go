package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "nodeaccess",
		Short:        "Request NaaS node access and relay node ids to pools",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	requestCmd := &cobra.Command{
		Use:   "request",
		Short: "Run one access request",
		RunE:  runRequest,
	}
	addChainFlags(requestCmd.Flags())
	requestCmd.Flags().String("payload", "", "webhook payload file, - for stdin (empty: pool is signed manually)")
	requestCmd.Flags().String("out", "", "append access records to this JSONL file")
	requestCmd.Flags().String("pg-dsn", "", "Postgres DSN for access records")
	root.AddCommand(requestCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the webhook endpoint",
		RunE:  runServe,
	}
	addChainFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("out", "", "append access records to this JSONL file")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for access records")
	root.AddCommand(serveCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show signer balances, allowance and fees",
		RunE:  runStatus,
	}
	addChainFlags(statusCmd.Flags())
	root.AddCommand(statusCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode the Paid event of an access request transaction",
		RunE:  runInspect,
	}
	inspectCmd.Flags().String("rpc", "", "RPC URL")
	inspectCmd.Flags().String("access-gate", "", "access gate contract address")
	inspectCmd.Flags().String("tx", "", "access request transaction hash")
	inspectCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "RPC URL")
	flags.String("private-key", "", "hex private key of the signing account")
	flags.String("access-gate", "", "access gate contract address")
	flags.String("fee-token", "", "fee token contract address")
	flags.String("pool-signer", "", "pool signing contract address")
	flags.String("pool-event-signature", "PoolReady(uint32,address)", "event signature whose match reasons carry the pool id")
	flags.Duration("receipt-timeout", 5*time.Minute, "maximum wait for a transaction to be mined (0 disables)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
