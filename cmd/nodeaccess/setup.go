package main

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"nodeAccess/internal/access"
	"nodeAccess/internal/chain"
	"nodeAccess/internal/config"
	"nodeAccess/internal/storage"
	"nodeAccess/internal/storage/postgres"
)

// environment bundles the connected chain dependencies of a command.
type environment struct {
	client     *chain.Client
	transactor *chain.Transactor
	addrs      access.Addresses
	sink       storage.Storage
	closers    []func()
}

func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func setupEnvironment(ctx context.Context, cfg config.Config, logger *zap.Logger) (*environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	addrs, err := parseAddresses(cfg)
	if err != nil {
		return nil, err
	}

	env := &environment{addrs: addrs, sink: storage.Nop{}}

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	env.client = client
	env.closers = append(env.closers, client.Close)

	transactor, err := chain.NewTransactor(ctx, client, chain.TransactorConfig{
		PrivateKey:     cfg.PrivateKey,
		ReceiptTimeout: cfg.ReceiptTimeout,
	}, logger)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.transactor = transactor

	switch {
	case cfg.PGDSN != "":
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		env.closers = append(env.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			env.Close()
			return nil, err
		}
		env.sink = store
	case cfg.Out != "":
		env.sink = storage.NewJsonlStorage(cfg.Out)
	}

	return env, nil
}

func parseAddresses(cfg config.Config) (access.Addresses, error) {
	gate, err := parseAddress("access-gate", cfg.AccessGate)
	if err != nil {
		return access.Addresses{}, err
	}
	token, err := parseAddress("fee-token", cfg.FeeToken)
	if err != nil {
		return access.Addresses{}, err
	}
	signer, err := parseAddress("pool-signer", cfg.PoolSigner)
	if err != nil {
		return access.Addresses{}, err
	}
	return access.Addresses{AccessGate: gate, FeeToken: token, PoolSigner: signer}, nil
}

func parseAddress(name, input string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", name, input)
	}
	return common.HexToAddress(input), nil
}

func (e *environment) recorder(chainID *big.Int) func(context.Context, access.Result, error) error {
	return func(ctx context.Context, res access.Result, reqErr error) error {
		return e.sink.PutRecord(ctx, storage.NewRecord(chainID, e.addrs.AccessGate, res, reqErr, time.Now()))
	}
}
