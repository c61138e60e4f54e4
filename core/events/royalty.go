package events

import "github.com/nfidao/nfi-smart-contract/core/types"

const (
	// TypeRegistryInitialized is emitted once when a royalty registry is
	// initialised with its defaults.
	TypeRegistryInitialized = "royalty.registry.initialized"
	// TypeReceiverUpdated is emitted when the default royalty receiver changes.
	TypeReceiverUpdated = "royalty.receiver.updated"
	// TypeDefaultRateUpdated is emitted when the default royalty rate changes.
	TypeDefaultRateUpdated = "royalty.default_rate.updated"
	// TypeCollectionRoyaltySet is emitted for every per-collection override
	// written to the registry.
	TypeCollectionRoyaltySet = "royalty.collection.set"

	TypeCollectionOwnerUpdated   = "royalty.collection_owner.updated"
	TypeCollectionManagerUpdated = "royalty.collection_manager.updated"
	TypeCollectionSignerUpdated  = "royalty.collection_signer.updated"
	TypeModelFactoryUpdated      = "royalty.model_factory.updated"
	TypePriceFormulaUpdated      = "royalty.price_formula.updated"
)

type RegistryInitialized struct {
	Registry [20]byte
	Owner    [20]byte
	Receiver [20]byte
	Rate     uint64
}

func (RegistryInitialized) EventType() string { return TypeRegistryInitialized }

func (e RegistryInitialized) Event() *types.Event {
	return &types.Event{
		Type: TypeRegistryInitialized,
		Attributes: map[string]string{
			"registry": formatAddress(e.Registry),
			"owner":    formatAddress(e.Owner),
			"receiver": formatAddress(e.Receiver),
			"rate":     formatUint(e.Rate),
		},
	}
}

// DefaultRateUpdated records the previous and new default rate in basis
// points.
type DefaultRateUpdated struct {
	Registry [20]byte
	Caller   [20]byte
	Old      uint64
	New      uint64
}

func (DefaultRateUpdated) EventType() string { return TypeDefaultRateUpdated }

func (e DefaultRateUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeDefaultRateUpdated,
		Attributes: map[string]string{
			"registry": formatAddress(e.Registry),
			"caller":   formatAddress(e.Caller),
			"old":      formatUint(e.Old),
			"new":      formatUint(e.New),
		},
	}
}

// CollectionRoyaltySet records an override written for a single collection.
// A zero receiver means the default receiver applies.
type CollectionRoyaltySet struct {
	Registry   [20]byte
	Caller     [20]byte
	Collection [20]byte
	Rate       uint64
	Receiver   [20]byte
}

func (CollectionRoyaltySet) EventType() string { return TypeCollectionRoyaltySet }

func (e CollectionRoyaltySet) Event() *types.Event {
	return &types.Event{
		Type: TypeCollectionRoyaltySet,
		Attributes: map[string]string{
			"registry":   formatAddress(e.Registry),
			"caller":     formatAddress(e.Caller),
			"collection": formatAddress(e.Collection),
			"rate":       formatUint(e.Rate),
			"receiver":   formatAddress(e.Receiver),
		},
	}
}

// RegistryAddressUpdated records a change to one of the registry's address
// slots (receiver, collection roles, model factory, price formula).
type RegistryAddressUpdated struct {
	Type     string
	Registry [20]byte
	Caller   [20]byte
	Old      [20]byte
	New      [20]byte
}

func (e RegistryAddressUpdated) EventType() string { return e.Type }

func (e RegistryAddressUpdated) Event() *types.Event {
	return &types.Event{
		Type: e.Type,
		Attributes: map[string]string{
			"registry": formatAddress(e.Registry),
			"caller":   formatAddress(e.Caller),
			"old":      formatAddress(e.Old),
			"new":      formatAddress(e.New),
		},
	}
}
