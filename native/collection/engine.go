package collection

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/directory"
	"github.com/nfidao/nfi-smart-contract/native/royalty"
)

var errNilState = errors.New("collection engine: state not configured")

var (
	recordPrefix   = []byte("collection/record/")
	assetPrefix    = []byte("collection/asset/")
	balancePrefix  = []byte("collection/balance/")
	consumedPrefix = []byte("collection/consumed/")
	indexKey       = []byte("collection/index")
)

type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
}

type directoryView interface {
	Deploy(deployer [20]byte, kind directory.Kind) ([20]byte, error)
	Is(addr [20]byte, kind directory.Kind) (bool, error)
}

type registryView interface {
	State(registry [20]byte) (*royalty.Registry, error)
	Resolve(registry, collection [20]byte) ([20]byte, uint64, error)
}

type priceSource interface {
	TokenPrice(formula [20]byte, formulaType uint64, collection [20]byte) (*big.Int, error)
}

type paymentLedger interface {
	TransferNative(from, to [20]byte, amount *big.Int) error
	TransferFrom(spender, token, from, to [20]byte, amount *big.Int) error
}

// Engine is the per-collection issuance engine: it authorises, prices and
// settles mints and answers ownership, URI and royalty queries. It keeps no
// state of its own beyond the configured backend.
type Engine struct {
	state     engineState
	directory directoryView
	registry  registryView
	prices    priceSource
	ledger    paymentLedger
	verifier  Verifier
	pauses    nativecommon.PauseView
	emitter   events.Emitter
	nowFn     func() int64
}

// NewEngine constructs a collection engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		verifier: PersonalSignVerifier{},
		emitter:  events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetDirectory configures the address directory.
func (e *Engine) SetDirectory(d directoryView) { e.directory = d }

// SetRegistry configures the royalty registry engine consulted for roles,
// royalties and the price formula.
func (e *Engine) SetRegistry(r registryView) { e.registry = r }

// SetPriceSource configures the price formula engine.
func (e *Engine) SetPriceSource(p priceSource) { e.prices = p }

// SetLedger configures the ledger used to settle payments.
func (e *Engine) SetLedger(l paymentLedger) { e.ledger = l }

// SetPauses configures the pause view consulted before minting.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetVerifier swaps the signature verifier.
func (e *Engine) SetVerifier(v Verifier) {
	if v == nil {
		e.verifier = PersonalSignVerifier{}
		return
	}
	e.verifier = v
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return uint64(e.nowFn())
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.directory == nil || e.registry == nil {
		return fmt.Errorf("collection engine: dependencies not configured")
	}
	return nil
}

func addrKey(prefix []byte, addr [20]byte, rest ...[]byte) []byte {
	out := append(append([]byte(nil), prefix...), addr[:]...)
	for _, r := range rest {
		out = append(out, r...)
	}
	return out
}

func assetKey(collection [20]byte, id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return addrKey(assetPrefix, collection, buf[:])
}

// Create allocates and stores a new collection on behalf of the factory. Role
// identities are copied from the registry at this point; later registry
// changes do not alter them.
func (e *Engine) Create(params CreateParams) (*Collection, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if params.MintLimit == 0 {
		return nil, fmt.Errorf("%w: mint limit must be positive", nativecommon.ErrInvalidLimit)
	}
	if params.Designer == ([20]byte{}) {
		return nil, fmt.Errorf("%w: invalid designer address", nativecommon.ErrInvalidAddress)
	}
	if strings.TrimSpace(params.ModelID) == "" {
		return nil, fmt.Errorf("%w: model id required", nativecommon.ErrInvalidAddress)
	}
	reg, err := e.liveRegistry(params.Registry)
	if err != nil {
		return nil, err
	}
	if reg.CollectionManager == ([20]byte{}) || reg.CollectionSigner == ([20]byte{}) {
		return nil, fmt.Errorf("%w: registry %x has no collection roles", nativecommon.ErrInvalidAddress, params.Registry)
	}
	if err := e.validPaymentToken(params.PaymentToken); err != nil {
		return nil, err
	}
	addr, err := e.directory.Deploy(params.Factory, directory.KindCollection)
	if err != nil {
		return nil, err
	}
	col := &Collection{
		Address:          addr,
		Factory:          params.Factory,
		Registry:         params.Registry,
		ModelID:          params.ModelID,
		Name:             params.Name,
		Symbol:           params.ModelID,
		Designer:         params.Designer,
		Manager:          reg.CollectionManager,
		Owner:            reg.CollectionOwner,
		AuthorizedSigner: reg.CollectionSigner,
		MintLimit:        params.MintLimit,
		PaymentToken:     params.PaymentToken,
		CreatedAt:        e.now(),
	}
	if err := e.put(col); err != nil {
		return nil, err
	}
	if err := e.state.KVAppend(indexKey, addr[:]); err != nil {
		return nil, err
	}
	return col, nil
}

func (e *Engine) liveRegistry(registry [20]byte) (*royalty.Registry, error) {
	if registry == ([20]byte{}) {
		return nil, fmt.Errorf("%w: zero royalty registry", nativecommon.ErrInvalidAddress)
	}
	live, err := e.directory.Is(registry, directory.KindRoyaltyRegistry)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, fmt.Errorf("%w: %x is not a royalty registry", nativecommon.ErrInvalidAddress, registry)
	}
	reg, err := e.registry.State(registry)
	if err != nil {
		return nil, err
	}
	if !reg.Initialized {
		return nil, fmt.Errorf("%w: royalty registry %x not initialized", nativecommon.ErrInvalidAddress, registry)
	}
	return reg, nil
}

func (e *Engine) validPaymentToken(token [20]byte) error {
	if token == ([20]byte{}) {
		return nil
	}
	ok, err := e.directory.Is(token, directory.KindToken)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %x is not a fungible token", nativecommon.ErrInvalidAddress, token)
	}
	return nil
}

func (e *Engine) put(col *Collection) error {
	return e.state.KVPut(addrKey(recordPrefix, col.Address), col)
}

// Collection returns the stored record of the collection at addr.
func (e *Engine) Collection(addr [20]byte) (*Collection, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	col := new(Collection)
	ok, err := e.state.KVGet(addrKey(recordPrefix, addr), col)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: collection %x", nativecommon.ErrNotFound, addr)
	}
	return col, nil
}

// Collections lists every collection address in creation order.
func (e *Engine) Collections() ([][20]byte, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	var raw [][]byte
	if err := e.state.KVGetList(indexKey, &raw); err != nil {
		return nil, err
	}
	out := make([][20]byte, 0, len(raw))
	for _, entry := range raw {
		var addr [20]byte
		copy(addr[:], entry)
		out = append(out, addr)
	}
	return out, nil
}

// Asset returns the asset with the given id.
func (e *Engine) Asset(collection [20]byte, id uint64) (*Asset, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	asset := new(Asset)
	ok, err := e.state.KVGet(assetKey(collection, id), asset)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: asset %d", nativecommon.ErrUnknownAsset, id)
	}
	return asset, nil
}

// TokenURI returns the resolved URI of an asset.
func (e *Engine) TokenURI(collection [20]byte, id uint64) (string, error) {
	col, err := e.Collection(collection)
	if err != nil {
		return "", err
	}
	asset, err := e.Asset(collection, id)
	if err != nil {
		return "", err
	}
	return resolveURI(col.BaseURI, asset), nil
}

// OwnerOf returns the owner of an asset.
func (e *Engine) OwnerOf(collection [20]byte, id uint64) ([20]byte, error) {
	asset, err := e.Asset(collection, id)
	if err != nil {
		return [20]byte{}, err
	}
	return asset.Owner, nil
}

// BalanceOf returns how many assets of the collection owner holds.
func (e *Engine) BalanceOf(collection, owner [20]byte) (uint64, error) {
	if _, err := e.Collection(collection); err != nil {
		return 0, err
	}
	if owner == ([20]byte{}) {
		return 0, fmt.Errorf("%w: balance query for the zero address", nativecommon.ErrInvalidAddress)
	}
	var balance uint64
	if _, err := e.state.KVGet(addrKey(balancePrefix, collection, owner[:]), &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// TotalSupply returns the number of minted assets.
func (e *Engine) TotalSupply(collection [20]byte) (uint64, error) {
	col, err := e.Collection(collection)
	if err != nil {
		return 0, err
	}
	return col.MintedCount, nil
}

// MintLimit returns the immutable mint limit.
func (e *Engine) MintLimit(collection [20]byte) (uint64, error) {
	col, err := e.Collection(collection)
	if err != nil {
		return 0, err
	}
	return col.MintLimit, nil
}

// TokenPayment returns the payment token; the zero address means native.
func (e *Engine) TokenPayment(collection [20]byte) ([20]byte, error) {
	col, err := e.Collection(collection)
	if err != nil {
		return [20]byte{}, err
	}
	return col.PaymentToken, nil
}

// TokenPrice returns the unit price of formulaType through the price formula
// configured on the collection's registry.
func (e *Engine) TokenPrice(collection [20]byte, formulaType uint64) (*big.Int, error) {
	col, err := e.Collection(collection)
	if err != nil {
		return nil, err
	}
	return e.unitPrice(col, formulaType)
}

func (e *Engine) unitPrice(col *Collection, formulaType uint64) (*big.Int, error) {
	if formulaType == 0 {
		return nil, fmt.Errorf("%w: zero formula type", nativecommon.ErrUnsupportedFormula)
	}
	if e.prices == nil {
		return nil, fmt.Errorf("collection engine: price source not configured")
	}
	reg, err := e.registry.State(col.Registry)
	if err != nil {
		return nil, err
	}
	if reg.PriceFormula == ([20]byte{}) {
		return nil, fmt.Errorf("%w: registry %x has no price formula", nativecommon.ErrUnsupportedFormula, col.Registry)
	}
	return e.prices.TokenPrice(reg.PriceFormula, formulaType, col.Address)
}

// ContractURI returns the lower-case hex address of the collection.
func (e *Engine) ContractURI(collection [20]byte) (string, error) {
	col, err := e.Collection(collection)
	if err != nil {
		return "", err
	}
	return contractURI(col.Address), nil
}

// SupportsInterface reports whether the collection answers the interface id.
func (e *Engine) SupportsInterface(id uint32) bool {
	return supportsInterface(id)
}

// RoyaltyInfo returns the royalty receiver and amount owed on a sale of the
// asset, resolved live through the collection's registry.
func (e *Engine) RoyaltyInfo(collection [20]byte, id uint64, salePrice *big.Int) ([20]byte, *big.Int, error) {
	col, err := e.Collection(collection)
	if err != nil {
		return [20]byte{}, nil, err
	}
	if _, err := e.Asset(collection, id); err != nil {
		return [20]byte{}, nil, err
	}
	if salePrice == nil || salePrice.Sign() < 0 {
		return [20]byte{}, nil, fmt.Errorf("%w: sale price must be non-negative", nativecommon.ErrInvalidPayment)
	}
	receiver, rate, err := e.registry.Resolve(col.Registry, col.Address)
	if err != nil {
		return [20]byte{}, nil, err
	}
	amount := new(big.Int).Mul(salePrice, new(big.Int).SetUint64(rate))
	amount.Quo(amount, new(big.Int).SetUint64(royalty.RateDenominator))
	return receiver, amount, nil
}
