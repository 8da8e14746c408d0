package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nodeAccess/internal/config"
	"nodeAccess/internal/contracts"
)

func runStatus(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	cfg.Out, cfg.PGDSN = "", ""

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := setupEnvironment(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	gateABI, err := contracts.AccessGateABI()
	if err != nil {
		return err
	}
	tokenABI, err := contracts.FeeTokenABI()
	if err != nil {
		return err
	}

	account := env.transactor.From()
	balance, err := env.client.BalanceAt(ctx, account)
	if err != nil {
		return fmt.Errorf("native balance: %w", err)
	}
	token, err := contracts.FetchTokenInfo(ctx, env.client, env.addrs.FeeToken, logger)
	if err != nil {
		return fmt.Errorf("fee token metadata: %w", err)
	}
	tokenBalance, err := contracts.CallUint256(ctx, env.client, env.addrs.FeeToken, tokenABI, contracts.MethodBalanceOf, account)
	if err != nil {
		return err
	}
	allowance, err := contracts.CallUint256(ctx, env.client, env.addrs.FeeToken, tokenABI, contracts.MethodAllowance, account, env.addrs.AccessGate)
	if err != nil {
		return err
	}
	strongFee, err := contracts.CallUint256(ctx, env.client, env.addrs.AccessGate, gateABI, contracts.MethodStrongFee)
	if err != nil {
		return err
	}
	naasFee, err := contracts.CallUint256(ctx, env.client, env.addrs.AccessGate, gateABI, contracts.MethodNaaSRequestingFee)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "chain id\t%s\n", env.transactor.ChainID())
	fmt.Fprintf(w, "account\t%s\n", account.Hex())
	fmt.Fprintf(w, "native balance (wei)\t%s\n", balance)
	fmt.Fprintf(w, "fee token\t%s (%s, %d decimals)\n", token.Address, token.Symbol, token.Decimals)
	fmt.Fprintf(w, "fee token balance\t%s\n", tokenBalance)
	fmt.Fprintf(w, "allowance to access gate\t%s\n", allowance)
	fmt.Fprintf(w, "strong fee\t%s\n", strongFee)
	fmt.Fprintf(w, "naas fee (wei)\t%s\n", naasFee)
	fmt.Fprintf(w, "allowance top-up needed\t%t\n", allowance.Cmp(strongFee) < 0)
	fmt.Fprintf(w, "native balance covers naas fee\t%t\n", balance.Cmp(naasFee) >= 0)
	return w.Flush()
}
