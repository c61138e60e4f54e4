package collection

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
)

func (e *Engine) consumed(collection [20]byte, key [32]byte) (bool, error) {
	return e.state.KVGet(addrKey(consumedPrefix, collection, key[:]), nil)
}

func (e *Engine) consume(collection [20]byte, key [32]byte) error {
	return e.state.KVPut(addrKey(consumedPrefix, collection, key[:]), true)
}

// Mint authorises, prices and settles a mint of req.TotalCount assets to
// req.Receiver. attached is the native value sent along with the call.
//
// Signature consumption, asset creation and the minted count are written
// before any payment moves so a re-entrant mint observes the spent signature
// and the raised count. The caller is expected to run Mint inside a
// transaction that is discarded when an error is returned.
func (e *Engine) Mint(caller, collection [20]byte, req MintRequest, attached *big.Int) (*MintResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if e.ledger == nil {
		return nil, fmt.Errorf("collection engine: ledger not configured")
	}
	if err := nativecommon.Guard(e.pauses, nativecommon.ModuleMinting); err != nil {
		return nil, err
	}
	if attached == nil {
		attached = new(big.Int)
	}
	if attached.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative attached value", nativecommon.ErrInvalidPayment)
	}
	col, err := e.Collection(collection)
	if err != nil {
		return nil, err
	}

	sigKey := signatureKey(req.Signature)
	spent, err := e.consumed(collection, sigKey)
	if err != nil {
		return nil, err
	}
	if spent {
		return nil, nativecommon.ErrSignatureReused
	}
	if req.TotalCount == 0 || uint64(len(req.URIs)) != req.TotalCount {
		return nil, fmt.Errorf("%w: %d uris for %d assets", nativecommon.ErrMismatchedLength, len(req.URIs), req.TotalCount)
	}
	if req.Receiver == ([20]byte{}) {
		return nil, fmt.Errorf("%w: zero receiver", nativecommon.ErrInvalidAddress)
	}

	digest := MintDigest(caller, req.URIs[0], req.FormulaType, req.TotalCount, collection)
	if !e.verifier.Verify(digest, req.Signature, col.AuthorizedSigner) {
		return nil, nativecommon.ErrInvalidSignature
	}
	var digestKey [32]byte
	copy(digestKey[:], digest)
	spent, err = e.consumed(collection, digestKey)
	if err != nil {
		return nil, err
	}
	if spent {
		return nil, nativecommon.ErrSignatureReused
	}

	if req.TotalCount > col.MintLimit || col.MintedCount > col.MintLimit-req.TotalCount {
		return nil, fmt.Errorf("%w: %d minted, %d requested, limit %d", nativecommon.ErrLimitReached, col.MintedCount, req.TotalCount, col.MintLimit)
	}

	unitPrice, err := e.unitPrice(col, req.FormulaType)
	if err != nil {
		return nil, err
	}
	total, err := paymentTotal(unitPrice, req.TotalCount)
	if err != nil {
		return nil, err
	}
	if col.NativePayment() {
		if attached.Cmp(total) != 0 {
			return nil, fmt.Errorf("%w: attached %s, expected %s", nativecommon.ErrInvalidPayment, attached, total)
		}
	} else if attached.Sign() != 0 {
		return nil, nativecommon.ErrNativePaymentNotAllowed
	}

	if err := e.consume(collection, sigKey); err != nil {
		return nil, err
	}
	if err := e.consume(collection, digestKey); err != nil {
		return nil, err
	}
	first := col.MintedCount
	for i := uint64(0); i < req.TotalCount; i++ {
		asset := &Asset{ID: first + i, Owner: req.Receiver, URI: req.URIs[i]}
		if err := e.state.KVPut(assetKey(collection, asset.ID), asset); err != nil {
			return nil, err
		}
	}
	balanceKey := addrKey(balancePrefix, collection, req.Receiver[:])
	var balance uint64
	if _, err := e.state.KVGet(balanceKey, &balance); err != nil {
		return nil, err
	}
	if err := e.state.KVPut(balanceKey, balance+req.TotalCount); err != nil {
		return nil, err
	}
	col.MintedCount += req.TotalCount
	if err := e.put(col); err != nil {
		return nil, err
	}

	if err := e.settle(caller, col, total); err != nil {
		return nil, err
	}

	for i := uint64(0); i < req.TotalCount; i++ {
		id := first + i
		e.emitter.Emit(events.AssetCreated{Collection: collection, AssetID: id, Owner: req.Receiver, URI: req.URIs[i]})
		e.emitter.Emit(events.AssetTransferred{Collection: collection, AssetID: id, To: req.Receiver})
	}
	e.emitter.Emit(events.MintSettled{
		Collection:   collection,
		Caller:       caller,
		Receiver:     req.Receiver,
		FirstAssetID: first,
		Count:        req.TotalCount,
		FormulaType:  req.FormulaType,
		PaymentToken: col.PaymentToken,
		Amount:       new(big.Int).Set(total),
		Payee:        col.Manager,
	})
	return &MintResult{
		FirstAssetID: first,
		Count:        req.TotalCount,
		UnitPrice:    unitPrice,
		Total:        total,
		PaymentToken: col.PaymentToken,
		Payee:        col.Manager,
	}, nil
}

// settle moves the payment to the collection manager. Native value is first
// received by the collection and then forwarded; token payments are pulled
// from the caller under the allowance granted to the collection.
func (e *Engine) settle(caller [20]byte, col *Collection, total *big.Int) error {
	if total.Sign() == 0 {
		return nil
	}
	if col.NativePayment() {
		if err := e.ledger.TransferNative(caller, col.Address, total); err != nil {
			return err
		}
		if err := e.ledger.TransferNative(col.Address, col.Manager, total); err != nil {
			return fmt.Errorf("%w: %v", nativecommon.ErrPaymentForwardFailed, err)
		}
		return nil
	}
	return e.ledger.TransferFrom(col.Address, col.PaymentToken, caller, col.Manager, total)
}

func paymentTotal(unitPrice *big.Int, count uint64) (*big.Int, error) {
	if unitPrice == nil || unitPrice.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid unit price", nativecommon.ErrInvalidPayment)
	}
	price, overflow := uint256.FromBig(unitPrice)
	if overflow {
		return nil, fmt.Errorf("%w: unit price overflows 256 bits", nativecommon.ErrInvalidPayment)
	}
	total, overflow := new(uint256.Int).MulOverflow(price, uint256.NewInt(count))
	if overflow {
		return nil, fmt.Errorf("%w: payment total overflows 256 bits", nativecommon.ErrInvalidPayment)
	}
	return total.ToBig(), nil
}
