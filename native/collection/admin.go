package collection

import (
	"errors"
	"fmt"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
)

// authorizeManager loads the collection and accepts either its manager or the
// collection manager delegate configured on its current registry.
func (e *Engine) authorizeManager(caller, collection [20]byte) (*Collection, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	col, err := e.Collection(collection)
	if err != nil {
		return nil, err
	}
	if caller == col.Manager {
		return col, nil
	}
	reg, err := e.registry.State(col.Registry)
	if err != nil {
		if errors.Is(err, nativecommon.ErrNotFound) {
			return nil, nativecommon.ErrUnauthorized
		}
		return nil, err
	}
	if reg.CollectionManager != ([20]byte{}) && caller == reg.CollectionManager {
		return col, nil
	}
	return nil, nativecommon.ErrUnauthorized
}

// SetBaseURI replaces the base URI prefixed to asset URIs.
func (e *Engine) SetBaseURI(caller, collection [20]byte, baseURI string) error {
	col, err := e.authorizeManager(caller, collection)
	if err != nil {
		return err
	}
	old := col.BaseURI
	col.BaseURI = baseURI
	if err := e.put(col); err != nil {
		return err
	}
	e.emitter.Emit(events.BaseURIUpdated{Collection: collection, Caller: caller, Old: old, New: baseURI})
	return nil
}

// SetDesigner hands the designer role to a new identity. Only the current
// designer may call it.
func (e *Engine) SetDesigner(caller, collection, designer [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	col, err := e.Collection(collection)
	if err != nil {
		return err
	}
	if caller != col.Designer {
		return nativecommon.ErrUnauthorized
	}
	if designer == ([20]byte{}) {
		return fmt.Errorf("%w: invalid designer address", nativecommon.ErrInvalidAddress)
	}
	old := col.Designer
	col.Designer = designer
	if err := e.put(col); err != nil {
		return err
	}
	e.emitter.Emit(events.CollectionAddressUpdated{Type: events.TypeDesignerUpdated, Collection: collection, Caller: caller, Old: old, New: designer})
	return nil
}

func (e *Engine) changeManaged(caller, collection, value [20]byte, eventType string, slot func(*Collection) *[20]byte) error {
	col, err := e.authorizeManager(caller, collection)
	if err != nil {
		return err
	}
	if value == ([20]byte{}) {
		return fmt.Errorf("%w: %s", nativecommon.ErrInvalidAddress, eventType)
	}
	field := slot(col)
	old := *field
	*field = value
	if err := e.put(col); err != nil {
		return err
	}
	e.emitter.Emit(events.CollectionAddressUpdated{Type: eventType, Collection: collection, Caller: caller, Old: old, New: value})
	return nil
}

// SetManager hands the manager role to a new identity.
func (e *Engine) SetManager(caller, collection, manager [20]byte) error {
	return e.changeManaged(caller, collection, manager, events.TypeManagerUpdated,
		func(c *Collection) *[20]byte { return &c.Manager })
}

// ChangeAuthorizedSigner replaces the identity whose signatures authorise
// mints.
func (e *Engine) ChangeAuthorizedSigner(caller, collection, signer [20]byte) error {
	return e.changeManaged(caller, collection, signer, events.TypeSignerUpdated,
		func(c *Collection) *[20]byte { return &c.AuthorizedSigner })
}

// ChangeRoyaltyRegistry points the collection at another live royalty
// registry.
func (e *Engine) ChangeRoyaltyRegistry(caller, collection, registry [20]byte) error {
	if _, err := e.authorizeManager(caller, collection); err != nil {
		return err
	}
	if _, err := e.liveRegistry(registry); err != nil {
		return err
	}
	return e.changeManaged(caller, collection, registry, events.TypeRegistryUpdated,
		func(c *Collection) *[20]byte { return &c.Registry })
}

// SetPaymentCurrency switches the mint currency. The zero address selects the
// native currency; anything else must be a registered fungible token.
func (e *Engine) SetPaymentCurrency(caller, collection, token [20]byte) error {
	col, err := e.authorizeManager(caller, collection)
	if err != nil {
		return err
	}
	if err := e.validPaymentToken(token); err != nil {
		return err
	}
	old := col.PaymentToken
	col.PaymentToken = token
	if err := e.put(col); err != nil {
		return err
	}
	e.emitter.Emit(events.CollectionAddressUpdated{Type: events.TypePaymentUpdated, Collection: collection, Caller: caller, Old: old, New: token})
	return nil
}
