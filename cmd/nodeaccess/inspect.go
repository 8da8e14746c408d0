package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nodeAccess/internal/chain"
	"nodeAccess/internal/config"
	"nodeAccess/internal/contracts"
)

type paidView struct {
	TxHash          string `json:"tx_hash"`
	LogIndex        uint   `json:"log_index"`
	Entity          string `json:"entity"`
	NodeID          string `json:"node_id"`
	NodeIDBytes32   string `json:"node_id_bytes32"`
	IsBYON          bool   `json:"is_byon"`
	IsRenewal       bool   `json:"is_renewal"`
	UpToBlockNumber string `json:"up_to_block_number"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	txHex, _ := cmd.Flags().GetString("tx")

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	gate, err := parseAddress("access-gate", cfg.AccessGate)
	if err != nil {
		return err
	}
	raw, err := hexutil.Decode(txHex)
	if err != nil || len(raw) != common.HashLength {
		return fmt.Errorf("invalid tx hash: %q", txHex)
	}
	txHash := common.BytesToHash(raw)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	receipt, err := client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return fmt.Errorf("get receipt: %w", err)
	}
	logger.Debug("receipt loaded", zap.String("tx_hash", txHash.Hex()), zap.Int("logs", len(receipt.Logs)), zap.Uint64("status", receipt.Status))

	paid, err := contracts.FindPaid(receipt.Logs, gate)
	if err != nil {
		return err
	}
	padded, err := contracts.LeftPad32(paid.NodeID)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(paidView{
		TxHash:          paid.TxHash.Hex(),
		LogIndex:        paid.LogIndex,
		Entity:          paid.Entity.Hex(),
		NodeID:          paid.NodeID.String(),
		NodeIDBytes32:   hexutil.Encode(padded[:]),
		IsBYON:          paid.IsBYON,
		IsRenewal:       paid.IsRenewal,
		UpToBlockNumber: paid.UpToBlockNumber.String(),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
