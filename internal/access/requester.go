package access

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"nodeAccess/internal/contracts"
	"nodeAccess/internal/model"
)

// Chain is the signing account the requester acts through.
type Chain interface {
	contracts.Caller
	From() common.Address
	Send(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error)
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Addresses are the deployed contracts an invocation talks to.
type Addresses struct {
	AccessGate common.Address
	FeeToken   common.Address
	PoolSigner common.Address
}

// Result describes one completed access request.
type Result struct {
	Account     common.Address
	StrongFee   *big.Int
	NaaSFee     *big.Int
	AllowanceTx *common.Hash
	AccessTx    common.Hash
	Paid        model.PaidEvent
	Target      model.PoolTarget
	SignTx      *common.Hash
}

// Submitted reports whether the access request transaction was sent.
func (r Result) Submitted() bool {
	return r.AccessTx != (common.Hash{})
}

// Requester pays for NaaS access and relays the granted node id to a pool.
type Requester struct {
	chain  Chain
	addrs  Addresses
	logger *zap.Logger

	gateABI   abi.ABI
	tokenABI  abi.ABI
	signerABI abi.ABI
	label     [32]byte
}

// NewRequester builds a Requester over chain for the given contracts.
func NewRequester(chain Chain, addrs Addresses, logger *zap.Logger) (*Requester, error) {
	if chain == nil {
		return nil, fmt.Errorf("chain is nil")
	}
	if addrs.AccessGate == (common.Address{}) || addrs.FeeToken == (common.Address{}) || addrs.PoolSigner == (common.Address{}) {
		return nil, fmt.Errorf("access gate, fee token and pool signer addresses are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gateABI, err := contracts.AccessGateABI()
	if err != nil {
		return nil, fmt.Errorf("parse access gate abi: %w", err)
	}
	tokenABI, err := contracts.FeeTokenABI()
	if err != nil {
		return nil, fmt.Errorf("parse fee token abi: %w", err)
	}
	signerABI, err := contracts.PoolSignerABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool signer abi: %w", err)
	}
	label, err := contracts.Bytes32String(contracts.NodeIDLabel)
	if err != nil {
		return nil, err
	}

	return &Requester{
		chain:     chain,
		addrs:     addrs,
		logger:    logger,
		gateABI:   gateABI,
		tokenABI:  tokenABI,
		signerABI: signerABI,
		label:     label,
	}, nil
}

// Request runs one invocation: top up the fee-token allowance if needed, pay
// for NaaS access, read the node id from the Paid event and, for
// PoolFromPayload targets, submit the pool signature. Any failure aborts the
// invocation; the returned Result still carries the hashes already submitted.
func (r *Requester) Request(ctx context.Context, target model.PoolTarget) (Result, error) {
	if target == nil {
		target = model.ManualPool{}
	}
	res := Result{Account: r.chain.From(), Target: target}

	allowanceTx, strongFee, err := r.ensureAllowance(ctx)
	res.AllowanceTx = allowanceTx
	res.StrongFee = strongFee
	if err != nil {
		return res, err
	}

	accessTx, naasFee, receipt, err := r.requestAccess(ctx)
	res.AccessTx = accessTx
	res.NaaSFee = naasFee
	if err != nil {
		return res, err
	}

	paid, err := contracts.FindPaid(receipt.Logs, r.addrs.AccessGate)
	if err != nil {
		return res, fmt.Errorf("extract node id from %s: %w", accessTx.Hex(), err)
	}
	res.Paid = paid
	r.logger.Info("node id to sign", zap.String("node_id", paid.NodeID.String()), zap.Uint("log_index", paid.LogIndex))

	switch t := target.(type) {
	case model.ManualPool:
		r.logger.Info("no payload detected, pool must be signed manually", zap.String("node_id", paid.NodeID.String()))
	case model.PoolFromPayload:
		signTx, err := r.relay(ctx, t.PoolID, paid.NodeID, accessTx)
		if err != nil {
			return res, err
		}
		res.SignTx = &signTx
	default:
		return res, fmt.Errorf("unsupported pool target %T", target)
	}

	return res, nil
}

func (r *Requester) ensureAllowance(ctx context.Context) (*common.Hash, *big.Int, error) {
	owner := r.chain.From()
	allowance, err := contracts.CallUint256(ctx, r.chain, r.addrs.FeeToken, r.tokenABI, contracts.MethodAllowance, owner, r.addrs.AccessGate)
	if err != nil {
		return nil, nil, fmt.Errorf("read allowance: %w", err)
	}
	fee, err := contracts.CallUint256(ctx, r.chain, r.addrs.AccessGate, r.gateABI, contracts.MethodStrongFee)
	if err != nil {
		return nil, nil, fmt.Errorf("read strong fee: %w", err)
	}

	if allowance.Cmp(fee) >= 0 {
		r.logger.Debug("allowance sufficient", zap.String("allowance", allowance.String()), zap.String("fee", fee.String()))
		return nil, fee, nil
	}

	r.logger.Info("insufficient fee token allowance, increasing",
		zap.String("allowance", allowance.String()),
		zap.String("fee", fee.String()),
	)
	data, err := r.tokenABI.Pack(contracts.MethodIncreaseAllowance, r.addrs.AccessGate, fee)
	if err != nil {
		return nil, nil, fmt.Errorf("pack %s: %w", contracts.MethodIncreaseAllowance, err)
	}
	hash, err := r.chain.Send(ctx, r.addrs.FeeToken, data, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("increase allowance: %w", err)
	}
	if _, err := r.chain.WaitMined(ctx, hash); err != nil {
		return &hash, nil, fmt.Errorf("increase allowance: %w", err)
	}
	r.logger.Info("allowance increased", zap.String("tx_hash", hash.Hex()))
	return &hash, fee, nil
}

func (r *Requester) requestAccess(ctx context.Context) (common.Hash, *big.Int, *types.Receipt, error) {
	value, err := contracts.CallUint256(ctx, r.chain, r.addrs.AccessGate, r.gateABI, contracts.MethodNaaSRequestingFee)
	if err != nil {
		return common.Hash{}, nil, nil, fmt.Errorf("read naas fee: %w", err)
	}

	data, err := r.gateABI.Pack(contracts.MethodRequestAccess, true)
	if err != nil {
		return common.Hash{}, nil, nil, fmt.Errorf("pack %s: %w", contracts.MethodRequestAccess, err)
	}
	hash, err := r.chain.Send(ctx, r.addrs.AccessGate, data, value)
	if err != nil {
		return common.Hash{}, nil, nil, fmt.Errorf("request access: %w", err)
	}
	r.logger.Info("request access sent", zap.String("tx_hash", hash.Hex()), zap.String("value", value.String()))

	receipt, err := r.chain.WaitMined(ctx, hash)
	if err != nil {
		return hash, value, nil, fmt.Errorf("request access: %w", err)
	}
	r.logger.Info("request access mined",
		zap.String("tx_hash", hash.Hex()),
		zap.Int("logs", len(receipt.Logs)),
	)
	return hash, value, receipt, nil
}

func (r *Requester) relay(ctx context.Context, poolID uint32, nodeID *big.Int, accessTx common.Hash) (common.Hash, error) {
	nodeData, err := contracts.LeftPad32(nodeID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode node id: %w", err)
	}

	data, err := r.signerABI.Pack(contracts.MethodSign, poolID, r.label, nodeData, [32]byte(accessTx))
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s: %w", contracts.MethodSign, err)
	}
	hash, err := r.chain.Send(ctx, r.addrs.PoolSigner, data, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign pool %d: %w", poolID, err)
	}
	r.logger.Info("pool sign sent",
		zap.Uint32("pool_id", poolID),
		zap.String("node_id", nodeID.String()),
		zap.String("tx_hash", hash.Hex()),
	)
	return hash, nil
}
