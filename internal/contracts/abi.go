package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const accessGateABIJSON = `[
  {
    "inputs": [{"internalType": "bool", "name": "isNaaS", "type": "bool"}],
    "name": "requestAccess",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "naasRequestingFeeInWei",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "strongFeeInWei",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address", "name": "entity", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "nodeId", "type": "uint256"},
      {"indexed": false, "internalType": "bool", "name": "isBYON", "type": "bool"},
      {"indexed": false, "internalType": "bool", "name": "isRenewal", "type": "bool"},
      {"indexed": false, "internalType": "uint256", "name": "upToBlockNumber", "type": "uint256"}
    ],
    "name": "Paid",
    "type": "event"
  }
]`

const feeTokenABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "owner", "type": "address"},
      {"internalType": "address", "name": "spender", "type": "address"}
    ],
    "name": "allowance",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "spender", "type": "address"},
      {"internalType": "uint256", "name": "addedValue", "type": "uint256"}
    ],
    "name": "increaseAllowance",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "account", "type": "address"}],
    "name": "balanceOf",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  },
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

const feeTokenBytes32ABIJSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

const poolSignerABIJSON = `[
  {
    "inputs": [
      {"internalType": "uint32", "name": "_poolId", "type": "uint32"},
      {"internalType": "bytes32", "name": "_description", "type": "bytes32"},
      {"internalType": "bytes32", "name": "_data", "type": "bytes32"},
      {"internalType": "bytes32", "name": "_txHash", "type": "bytes32"}
    ],
    "name": "sign",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

// Method and event names used against the deployed contracts.
const (
	MethodRequestAccess     = "requestAccess"
	MethodNaaSRequestingFee = "naasRequestingFeeInWei"
	MethodStrongFee         = "strongFeeInWei"
	MethodAllowance         = "allowance"
	MethodIncreaseAllowance = "increaseAllowance"
	MethodBalanceOf         = "balanceOf"
	MethodSign              = "sign"
	EventPaid               = "Paid"
)

type lazyABI struct {
	src    string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.src))
	})
	return l.parsed, l.err
}

var (
	accessGateABI      = &lazyABI{src: accessGateABIJSON}
	feeTokenABI        = &lazyABI{src: feeTokenABIJSON}
	feeTokenBytes32ABI = &lazyABI{src: feeTokenBytes32ABIJSON}
	poolSignerABI      = &lazyABI{src: poolSignerABIJSON}
)

// AccessGateABI returns the parsed access-gate ABI.
func AccessGateABI() (abi.ABI, error) { return accessGateABI.get() }

// FeeTokenABI returns the parsed fee-token ABI.
func FeeTokenABI() (abi.ABI, error) { return feeTokenABI.get() }

// PoolSignerABI returns the parsed pool-signing ABI.
func PoolSignerABI() (abi.ABI, error) { return poolSignerABI.get() }

func feeTokenBytes32ABIInstance() (abi.ABI, error) { return feeTokenBytes32ABI.get() }
