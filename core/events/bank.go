package events

import (
	"math/big"

	"github.com/nfidao/nfi-smart-contract/core/types"
)

const (
	// TypeNativeTransfer is emitted for native currency balance movements.
	TypeNativeTransfer = "bank.native.transfer"
	// TypeTokenDeployed is emitted when a fungible token is registered.
	TypeTokenDeployed = "bank.token.deployed"
	// TypeTokenTransfer is emitted for fungible token balance movements.
	TypeTokenTransfer = "bank.token.transfer"
	// TypeTokenApproval is emitted when an owner sets a spender allowance.
	TypeTokenApproval = "bank.token.approval"
)

type NativeTransfer struct {
	From   [20]byte
	To     [20]byte
	Amount *big.Int
}

func (NativeTransfer) EventType() string { return TypeNativeTransfer }

func (e NativeTransfer) Event() *types.Event {
	return &types.Event{
		Type: TypeNativeTransfer,
		Attributes: map[string]string{
			"from":   formatAddress(e.From),
			"to":     formatAddress(e.To),
			"amount": formatAmount(e.Amount),
		},
	}
}

type TokenDeployed struct {
	Token  [20]byte
	Owner  [20]byte
	Symbol string
	Supply *big.Int
}

func (TokenDeployed) EventType() string { return TypeTokenDeployed }

func (e TokenDeployed) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenDeployed,
		Attributes: map[string]string{
			"token":  formatAddress(e.Token),
			"owner":  formatAddress(e.Owner),
			"symbol": normalizeSymbol(e.Symbol),
			"supply": formatAmount(e.Supply),
		},
	}
}

type TokenTransfer struct {
	Token  [20]byte
	From   [20]byte
	To     [20]byte
	Amount *big.Int
}

func (TokenTransfer) EventType() string { return TypeTokenTransfer }

func (e TokenTransfer) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenTransfer,
		Attributes: map[string]string{
			"token":  formatAddress(e.Token),
			"from":   formatAddress(e.From),
			"to":     formatAddress(e.To),
			"amount": formatAmount(e.Amount),
		},
	}
}

type TokenApproval struct {
	Token   [20]byte
	Owner   [20]byte
	Spender [20]byte
	Amount  *big.Int
}

func (TokenApproval) EventType() string { return TypeTokenApproval }

func (e TokenApproval) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenApproval,
		Attributes: map[string]string{
			"token":   formatAddress(e.Token),
			"owner":   formatAddress(e.Owner),
			"spender": formatAddress(e.Spender),
			"amount":  formatAmount(e.Amount),
		},
	}
}
