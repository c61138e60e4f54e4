package events

import (
	"math/big"

	"github.com/nfidao/nfi-smart-contract/core/types"
)

const (
	// TypeCollectionCreated is emitted when the factory registers a new
	// collection under its model identifier.
	TypeCollectionCreated = "factory.collection.created"
	// TypeFactoryRegistryUpdated is emitted when the factory switches the
	// royalty registry handed to new collections.
	TypeFactoryRegistryUpdated = "factory.registry.updated"
	// TypeAssetCreated is emitted once per minted asset.
	TypeAssetCreated = "collection.asset.created"
	// TypeAssetTransferred is emitted once per minted asset with an empty
	// sender, mirroring an ownership transfer from nobody to the receiver.
	TypeAssetTransferred = "collection.asset.transferred"
	// TypeMintSettled is emitted after a mint request has been fully settled.
	TypeMintSettled = "collection.mint.settled"
	// TypeBaseURIUpdated is emitted when the collection manager changes the
	// base URI.
	TypeBaseURIUpdated = "collection.base_uri.updated"

	TypeDesignerUpdated = "collection.designer.updated"
	TypeManagerUpdated  = "collection.manager.updated"
	TypeSignerUpdated   = "collection.signer.updated"
	TypeRegistryUpdated = "collection.registry.updated"
	TypePaymentUpdated  = "collection.payment.updated"
)

// CollectionCreated captures the parameters of a freshly created collection.
type CollectionCreated struct {
	Factory      [20]byte
	Collection   [20]byte
	ModelID      string
	Name         string
	Designer     [20]byte
	PaymentToken [20]byte
	MintLimit    uint64
}

// EventType implements the Event interface.
func (CollectionCreated) EventType() string { return TypeCollectionCreated }

func (e CollectionCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeCollectionCreated,
		Attributes: map[string]string{
			"factory":      formatAddress(e.Factory),
			"collection":   formatAddress(e.Collection),
			"modelId":      e.ModelID,
			"name":         e.Name,
			"designer":     formatAddress(e.Designer),
			"paymentToken": formatAddress(e.PaymentToken),
			"mintLimit":    formatUint(e.MintLimit),
		},
	}
}

// FactoryRegistryUpdated records a change of the factory's registry handle.
type FactoryRegistryUpdated struct {
	Factory [20]byte
	Caller  [20]byte
	Old     [20]byte
	New     [20]byte
}

func (FactoryRegistryUpdated) EventType() string { return TypeFactoryRegistryUpdated }

func (e FactoryRegistryUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeFactoryRegistryUpdated,
		Attributes: map[string]string{
			"factory": formatAddress(e.Factory),
			"caller":  formatAddress(e.Caller),
			"old":     formatAddress(e.Old),
			"new":     formatAddress(e.New),
		},
	}
}

type AssetCreated struct {
	Collection [20]byte
	AssetID    uint64
	Owner      [20]byte
	URI        string
}

func (AssetCreated) EventType() string { return TypeAssetCreated }

func (e AssetCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeAssetCreated,
		Attributes: map[string]string{
			"collection": formatAddress(e.Collection),
			"assetId":    formatUint(e.AssetID),
			"owner":      formatAddress(e.Owner),
			"uri":        e.URI,
		},
	}
}

type AssetTransferred struct {
	Collection [20]byte
	AssetID    uint64
	From       [20]byte
	To         [20]byte
}

func (AssetTransferred) EventType() string { return TypeAssetTransferred }

func (e AssetTransferred) Event() *types.Event {
	return &types.Event{
		Type: TypeAssetTransferred,
		Attributes: map[string]string{
			"collection": formatAddress(e.Collection),
			"assetId":    formatUint(e.AssetID),
			"from":       formatAddress(e.From),
			"to":         formatAddress(e.To),
		},
	}
}

// MintSettled summarises a settled mint request. A zero PaymentToken means the
// native currency was used.
type MintSettled struct {
	Collection   [20]byte
	Caller       [20]byte
	Receiver     [20]byte
	FirstAssetID uint64
	Count        uint64
	FormulaType  uint64
	PaymentToken [20]byte
	Amount       *big.Int
	Payee        [20]byte
}

func (MintSettled) EventType() string { return TypeMintSettled }

func (e MintSettled) Event() *types.Event {
	return &types.Event{
		Type: TypeMintSettled,
		Attributes: map[string]string{
			"collection":   formatAddress(e.Collection),
			"caller":       formatAddress(e.Caller),
			"receiver":     formatAddress(e.Receiver),
			"firstAssetId": formatUint(e.FirstAssetID),
			"count":        formatUint(e.Count),
			"formulaType":  formatUint(e.FormulaType),
			"paymentToken": formatAddress(e.PaymentToken),
			"amount":       formatAmount(e.Amount),
			"payee":        formatAddress(e.Payee),
		},
	}
}

type BaseURIUpdated struct {
	Collection [20]byte
	Caller     [20]byte
	Old        string
	New        string
}

func (BaseURIUpdated) EventType() string { return TypeBaseURIUpdated }

func (e BaseURIUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeBaseURIUpdated,
		Attributes: map[string]string{
			"collection": formatAddress(e.Collection),
			"caller":     formatAddress(e.Caller),
			"old":        e.Old,
			"new":        e.New,
		},
	}
}

// CollectionAddressUpdated records a change to one of the collection's
// address-valued fields. Type selects which field changed and must be one of
// the collection.*.updated constants.
type CollectionAddressUpdated struct {
	Type       string
	Collection [20]byte
	Caller     [20]byte
	Old        [20]byte
	New        [20]byte
}

func (e CollectionAddressUpdated) EventType() string { return e.Type }

func (e CollectionAddressUpdated) Event() *types.Event {
	return &types.Event{
		Type: e.Type,
		Attributes: map[string]string{
			"collection": formatAddress(e.Collection),
			"caller":     formatAddress(e.Caller),
			"old":        formatAddress(e.Old),
			"new":        formatAddress(e.New),
		},
	}
}
