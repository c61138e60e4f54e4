package royalty

import (
	"fmt"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
)

func (e *Engine) loadOwned(caller, registry [20]byte) (*Registry, error) {
	reg, err := e.load(registry)
	if err != nil {
		return nil, err
	}
	if caller != reg.Owner {
		return nil, nativecommon.ErrUnauthorized
	}
	return reg, nil
}

// SetOverride writes a single per-collection override. A zero receiver keeps
// the default receiver.
func (e *Engine) SetOverride(caller, registry, collection [20]byte, rate uint64, receiver [20]byte) error {
	batch := OverrideBatch{
		Collections: [][20]byte{collection},
		Rates:       []uint64{rate},
	}
	if receiver != ([20]byte{}) {
		batch.Receivers = [][20]byte{receiver}
	}
	return e.SetOverrides(caller, registry, batch)
}

// SetOverrides writes per-collection overrides. The registry owner, the
// collection manager role and the registry's model factory may call it. When
// receivers are supplied each one must be a real identity.
func (e *Engine) SetOverrides(caller, registry [20]byte, batch OverrideBatch) error {
	reg, err := e.load(registry)
	if err != nil {
		return err
	}
	if caller != reg.Owner && caller != reg.CollectionManager && (reg.ModelFactory == ([20]byte{}) || caller != reg.ModelFactory) {
		return nativecommon.ErrUnauthorized
	}
	if len(batch.Collections) != len(batch.Rates) {
		return fmt.Errorf("%w: %d collections, %d rates", nativecommon.ErrLengthMismatch, len(batch.Collections), len(batch.Rates))
	}
	if batch.Receivers != nil && len(batch.Receivers) != len(batch.Collections) {
		return fmt.Errorf("%w: %d collections, %d receivers", nativecommon.ErrLengthMismatch, len(batch.Collections), len(batch.Receivers))
	}
	for i, collection := range batch.Collections {
		if collection == ([20]byte{}) {
			return fmt.Errorf("%w: collection at index %d", nativecommon.ErrInvalidAddress, i)
		}
		if batch.Rates[i] > MaxRate {
			return fmt.Errorf("%w: %d exceeds %d", nativecommon.ErrInvalidRate, batch.Rates[i], MaxRate)
		}
		if batch.Receivers != nil && batch.Receivers[i] == ([20]byte{}) {
			return fmt.Errorf("%w: receiver at index %d", nativecommon.ErrInvalidAddress, i)
		}
	}
	for i, collection := range batch.Collections {
		override := &Override{IsSet: true, Rate: batch.Rates[i]}
		if batch.Receivers != nil {
			override.Receiver = batch.Receivers[i]
		}
		if err := e.state.KVPut(overrideKey(registry, collection), override); err != nil {
			return err
		}
		e.emitter.Emit(events.CollectionRoyaltySet{
			Registry:   registry,
			Caller:     caller,
			Collection: collection,
			Rate:       override.Rate,
			Receiver:   override.Receiver,
		})
	}
	return nil
}

// ChangeDefaultRate updates the default royalty rate.
func (e *Engine) ChangeDefaultRate(caller, registry [20]byte, rate uint64) error {
	reg, err := e.loadOwned(caller, registry)
	if err != nil {
		return err
	}
	if rate > MaxRate {
		return fmt.Errorf("%w: %d exceeds %d", nativecommon.ErrInvalidRate, rate, MaxRate)
	}
	old := reg.DefaultRate
	reg.DefaultRate = rate
	if err := e.putRegistry(reg); err != nil {
		return err
	}
	e.emitter.Emit(events.DefaultRateUpdated{Registry: registry, Caller: caller, Old: old, New: rate})
	return nil
}

func (e *Engine) changeAddress(caller, registry, value [20]byte, eventType string, slot func(*Registry) *[20]byte) error {
	reg, err := e.loadOwned(caller, registry)
	if err != nil {
		return err
	}
	if value == ([20]byte{}) {
		return fmt.Errorf("%w: %s", nativecommon.ErrInvalidAddress, eventType)
	}
	field := slot(reg)
	old := *field
	*field = value
	if err := e.putRegistry(reg); err != nil {
		return err
	}
	e.emitter.Emit(events.RegistryAddressUpdated{Type: eventType, Registry: registry, Caller: caller, Old: old, New: value})
	return nil
}

// ChangeReceiver updates the default royalty receiver.
func (e *Engine) ChangeReceiver(caller, registry, receiver [20]byte) error {
	return e.changeAddress(caller, registry, receiver, events.TypeReceiverUpdated,
		func(r *Registry) *[20]byte { return &r.DefaultReceiver })
}

// ChangeCollectionOwner updates the owner handed to new collections.
func (e *Engine) ChangeCollectionOwner(caller, registry, owner [20]byte) error {
	return e.changeAddress(caller, registry, owner, events.TypeCollectionOwnerUpdated,
		func(r *Registry) *[20]byte { return &r.CollectionOwner })
}

// ChangeCollectionManager updates the manager handed to new collections. The
// same identity acts as a manager delegate on existing collections.
func (e *Engine) ChangeCollectionManager(caller, registry, manager [20]byte) error {
	return e.changeAddress(caller, registry, manager, events.TypeCollectionManagerUpdated,
		func(r *Registry) *[20]byte { return &r.CollectionManager })
}

// ChangeCollectionSigner updates the authorized signer handed to new
// collections.
func (e *Engine) ChangeCollectionSigner(caller, registry, signer [20]byte) error {
	return e.changeAddress(caller, registry, signer, events.TypeCollectionSignerUpdated,
		func(r *Registry) *[20]byte { return &r.CollectionSigner })
}

// ChangeModelFactory updates the factory allowed to register overrides.
func (e *Engine) ChangeModelFactory(caller, registry, factory [20]byte) error {
	return e.changeAddress(caller, registry, factory, events.TypeModelFactoryUpdated,
		func(r *Registry) *[20]byte { return &r.ModelFactory })
}

// ChangePriceFormula updates the formula collections use to price mints.
func (e *Engine) ChangePriceFormula(caller, registry, formula [20]byte) error {
	return e.changeAddress(caller, registry, formula, events.TypePriceFormulaUpdated,
		func(r *Registry) *[20]byte { return &r.PriceFormula })
}
