package contracts

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"nodeAccess/internal/model"
)

// ErrPaidEventNotFound is returned when a receipt carries no Paid log from the access gate.
var ErrPaidEventNotFound = errors.New("paid event not found in receipt")

// FindPaid returns the first Paid event emitted by gate among logs.
// Logs from other contracts or with other signatures are skipped.
func FindPaid(logs []*types.Log, gate common.Address) (model.PaidEvent, error) {
	gateABI, err := AccessGateABI()
	if err != nil {
		return model.PaidEvent{}, fmt.Errorf("parse access gate abi: %w", err)
	}
	topic := gateABI.Events[EventPaid].ID

	for _, log := range logs {
		if log == nil || log.Address != gate {
			continue
		}
		if len(log.Topics) == 0 || log.Topics[0] != topic {
			continue
		}
		return DecodePaid(log)
	}
	return model.PaidEvent{}, ErrPaidEventNotFound
}

// DecodePaid decodes a single Paid log.
func DecodePaid(log *types.Log) (model.PaidEvent, error) {
	gateABI, err := AccessGateABI()
	if err != nil {
		return model.PaidEvent{}, fmt.Errorf("parse access gate abi: %w", err)
	}
	event := gateABI.Events[EventPaid]
	if len(log.Topics) == 0 || log.Topics[0] != event.ID {
		return model.PaidEvent{}, fmt.Errorf("log %d is not a Paid event", log.Index)
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return model.PaidEvent{}, fmt.Errorf("unpack paid: %w", err)
	}
	if len(values) != 5 {
		return model.PaidEvent{}, fmt.Errorf("unexpected paid values: %d", len(values))
	}

	entity, err := asAddress(values[0])
	if err != nil {
		return model.PaidEvent{}, fmt.Errorf("entity: %w", err)
	}
	nodeID, err := asBigInt(values[1])
	if err != nil {
		return model.PaidEvent{}, fmt.Errorf("node id: %w", err)
	}
	isBYON, ok := values[2].(bool)
	if !ok {
		return model.PaidEvent{}, fmt.Errorf("isBYON: unsupported type %T", values[2])
	}
	isRenewal, ok := values[3].(bool)
	if !ok {
		return model.PaidEvent{}, fmt.Errorf("isRenewal: unsupported type %T", values[3])
	}
	upTo, err := asBigInt(values[4])
	if err != nil {
		return model.PaidEvent{}, fmt.Errorf("up to block: %w", err)
	}

	return model.PaidEvent{
		Entity:          entity,
		NodeID:          nodeID,
		IsBYON:          isBYON,
		IsRenewal:       isRenewal,
		UpToBlockNumber: upTo,
		TxHash:          log.TxHash,
		LogIndex:        log.Index,
	}, nil
}
