package storage

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"nodeAccess/internal/access"
	"nodeAccess/internal/model"
)

// NewRecord flattens a request result into an audit record. reqErr is the
// error the request ended with, if any.
func NewRecord(chainID *big.Int, gate common.Address, res access.Result, reqErr error, at time.Time) model.AccessRecord {
	rec := model.AccessRecord{
		Account:    res.Account.Hex(),
		AccessGate: gate.Hex(),
		StrongFee:  bigString(res.StrongFee),
		NaaSFee:    bigString(res.NaaSFee),
		AccessTx:   res.AccessTx.Hex(),
		NodeID:     bigString(res.Paid.NodeID),
		CreatedAt:  at.UTC().Format(time.RFC3339Nano),
	}
	if chainID != nil && chainID.IsUint64() {
		rec.ChainID = chainID.Uint64()
	}
	if res.AllowanceTx != nil {
		h := res.AllowanceTx.Hex()
		rec.AllowanceTx = &h
	}
	if t, ok := res.Target.(model.PoolFromPayload); ok {
		id := t.PoolID
		rec.PoolID = &id
	}
	if res.SignTx != nil {
		h := res.SignTx.Hex()
		rec.SignTx = &h
	}
	if reqErr != nil {
		msg := reqErr.Error()
		rec.Failure = &msg
	}
	return rec
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}
