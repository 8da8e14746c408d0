package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PaidEvent is the decoded access-gate Paid event.
type PaidEvent struct {
	Entity          common.Address
	NodeID          *big.Int
	IsBYON          bool
	IsRenewal       bool
	UpToBlockNumber *big.Int
	TxHash          common.Hash
	LogIndex        uint
}
