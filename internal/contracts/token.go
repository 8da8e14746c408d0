package contracts

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// TokenInfo captures ERC20 metadata of the fee token.
type TokenInfo struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// FetchTokenInfo loads fee-token metadata. Symbol and name fall back to the
// bytes32 variants used by older tokens; failures there are only logged.
func FetchTokenInfo(ctx context.Context, caller Caller, token common.Address, logger *zap.Logger) (TokenInfo, error) {
	info := TokenInfo{Address: token.Hex()}
	if caller == nil {
		return info, fmt.Errorf("caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, err := FeeTokenABI()
	if err != nil {
		return info, fmt.Errorf("parse fee token abi: %w", err)
	}
	bytes32ABI, err := feeTokenBytes32ABIInstance()
	if err != nil {
		return info, fmt.Errorf("parse fee token bytes32 abi: %w", err)
	}

	values, err := Call(ctx, caller, token, stringABI, "decimals")
	if err != nil {
		return info, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return info, err
	}
	info.Decimals = decimals

	info.Symbol = textField(ctx, caller, token, "symbol", stringABI, bytes32ABI, logger)
	info.Name = textField(ctx, caller, token, "name", stringABI, bytes32ABI, logger)
	return info, nil
}

func textField(ctx context.Context, caller Caller, token common.Address, method string, stringABI, bytes32ABI abi.ABI, logger *zap.Logger) string {
	if values, err := Call(ctx, caller, token, stringABI, method); err == nil {
		if s, ok := values[0].(string); ok {
			return s
		}
	}
	values, err := Call(ctx, caller, token, bytes32ABI, method)
	if err != nil {
		logger.Debug(method+" call failed", zap.String("token", token.Hex()), zap.Error(err))
		return ""
	}
	s, _ := bytes32ToString(values[0])
	return s
}
