package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

var (
	// ErrTxReverted is returned when a mined transaction has a failed status.
	ErrTxReverted = errors.New("transaction reverted")
	// ErrUnknownTx is returned when waiting on a hash this transactor did not send.
	ErrUnknownTx = errors.New("unknown transaction")
)

// TransactorConfig holds signing and confirmation settings.
type TransactorConfig struct {
	PrivateKey     string
	ReceiptTimeout time.Duration
}

// Transactor signs transactions with a single local key and submits them
// through bound contracts on a Backend.
type Transactor struct {
	backend Backend
	opts    *bind.TransactOpts
	chainID *big.Int
	cfg     TransactorConfig
	logger  *zap.Logger

	mu        sync.Mutex
	contracts map[common.Address]*bind.BoundContract
	sent      map[common.Hash]*types.Transaction
}

// NewTransactor parses the private key and resolves the chain id from backend.
func NewTransactor(ctx context.Context, backend Backend, cfg TransactorConfig, logger *zap.Logger) (*Transactor, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	key, err := ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, err
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("keyed transactor: %w", err)
	}

	return &Transactor{
		backend:   backend,
		opts:      opts,
		chainID:   chainID,
		cfg:       cfg,
		logger:    logger,
		contracts: make(map[common.Address]*bind.BoundContract),
		sent:      make(map[common.Hash]*types.Transaction),
	}, nil
}

// ParsePrivateKey decodes a hex private key with or without 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, fmt.Errorf("private key is required")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// From returns the signing account.
func (t *Transactor) From() common.Address {
	return t.opts.From
}

// ChainID returns the chain id transactions are signed for.
func (t *Transactor) ChainID() *big.Int {
	return new(big.Int).Set(t.chainID)
}

// CallContract performs an eth_call through the backend.
func (t *Transactor) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return t.backend.CallContract(ctx, msg, blockNumber)
}

// Send signs and submits a transaction calling to with data and value.
// Nonce, gas limit and fees are filled in by the bound contract.
// It returns once the node accepted the transaction.
func (t *Transactor) Send(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	opts := *t.opts
	opts.Context = ctx
	opts.Value = value

	tx, err := t.contract(to).RawTransact(&opts, data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}

	t.mu.Lock()
	t.sent[tx.Hash()] = tx
	t.mu.Unlock()

	t.logger.Debug("tx sent",
		zap.String("hash", tx.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", tx.Nonce()),
		zap.Uint64("gas", tx.Gas()),
		zap.String("value", tx.Value().String()),
	)
	return tx.Hash(), nil
}

// WaitMined blocks until a transaction sent by this transactor is mined and
// fails if it reverted. ReceiptTimeout bounds the wait when set.
func (t *Transactor) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	t.mu.Lock()
	tx, ok := t.sent[hash]
	t.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTx, hash.Hex())
	}

	if t.cfg.ReceiptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.ReceiptTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(ctx, t.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("wait %s: %w", hash.Hex(), err)
	}

	t.mu.Lock()
	delete(t.sent, hash)
	t.mu.Unlock()

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTxReverted, hash.Hex())
	}
	return receipt, nil
}

func (t *Transactor) contract(addr common.Address) *bind.BoundContract {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.contracts[addr]
	if !ok {
		c = bind.NewBoundContract(addr, abi.ABI{}, t.backend, t.backend, nil)
		t.contracts[addr] = c
	}
	return c
}
