package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/collection"
	"github.com/nfidao/nfi-smart-contract/native/directory"
	"github.com/nfidao/nfi-smart-contract/native/royalty"
)

var errNilState = errors.New("factory: state not configured")

var (
	recordPrefix = []byte("factory/record/")
	modelPrefix  = []byte("factory/model/")
	listPrefix   = []byte("factory/collections/")
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

type collectionCreator interface {
	Create(params collection.CreateParams) (*collection.Collection, error)
}

type overrideWriter interface {
	SetOverride(caller, registry, collection [20]byte, rate uint64, receiver [20]byte) error
}

// Record is the persisted state of a factory.
type Record struct {
	Address  [20]byte
	Owner    [20]byte
	Registry [20]byte
}

// CreateParams are the inputs of CreateCollection. A zero PaymentToken selects
// the native currency.
type CreateParams struct {
	Name            string
	ModelID         string
	PaymentToken    [20]byte
	Designer        [20]byte
	RoyaltyReceiver [20]byte
	Rate            uint64
	MintLimit       uint64
}

// Engine creates collections and indexes them by model identifier. A model
// identifier, once used, can never be registered again.
type Engine struct {
	state       engineState
	directory   directoryView
	collections collectionCreator
	royalties   overrideWriter
	pauses      nativecommon.PauseView
	emitter     events.Emitter
}

// NewEngine constructs a factory engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetDirectory configures the address directory.
func (e *Engine) SetDirectory(d directoryView) { e.directory = d }

// SetCollections configures the collection engine that stores new
// collections.
func (e *Engine) SetCollections(c collectionCreator) { e.collections = c }

// SetRoyalties configures the registry engine receiving creation overrides.
func (e *Engine) SetRoyalties(r overrideWriter) { e.royalties = r }

// SetPauses configures the pause view consulted before creating collections.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func recordKey(factory [20]byte) []byte {
	return append(append([]byte(nil), recordPrefix...), factory[:]...)
}

func modelKey(factory [20]byte, modelID string) []byte {
	out := append(append([]byte(nil), modelPrefix...), factory[:]...)
	return append(out, []byte(modelID)...)
}

func listKey(factory [20]byte) []byte {
	return append(append([]byte(nil), listPrefix...), factory[:]...)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.directory == nil {
		return fmt.Errorf("factory: directory not configured")
	}
	return nil
}

func (e *Engine) liveRegistry(registry [20]byte) error {
	if registry == ([20]byte{}) {
		return fmt.Errorf("%w: zero royalty registry", nativecommon.ErrInvalidAddress)
	}
	ok, err := e.directory.Is(registry, directory.KindRoyaltyRegistry)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %x is not a royalty registry", nativecommon.ErrInvalidAddress, registry)
	}
	return nil
}

// Deploy allocates a factory owned by caller that hands registry to every
// collection it creates.
func (e *Engine) Deploy(caller, registry [20]byte) ([20]byte, error) {
	if err := e.ready(); err != nil {
		return [20]byte{}, err
	}
	if err := e.liveRegistry(registry); err != nil {
		return [20]byte{}, err
	}
	addr, err := e.directory.Deploy(caller, directory.KindFactory)
	if err != nil {
		return [20]byte{}, err
	}
	if err := e.state.KVPut(recordKey(addr), &Record{Address: addr, Owner: caller, Registry: registry}); err != nil {
		return [20]byte{}, err
	}
	return addr, nil
}

// Record returns the persisted factory state.
func (e *Engine) Record(factory [20]byte) (*Record, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record := new(Record)
	ok, err := e.state.KVGet(recordKey(factory), record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: factory %x", nativecommon.ErrNotFound, factory)
	}
	return record, nil
}

// CreateCollection creates a collection for a model identifier that has never
// been used on this factory and registers its royalty override.
func (e *Engine) CreateCollection(caller, factory [20]byte, params CreateParams) ([20]byte, error) {
	if err := e.ready(); err != nil {
		return [20]byte{}, err
	}
	if e.collections == nil || e.royalties == nil {
		return [20]byte{}, fmt.Errorf("factory: engines not configured")
	}
	if err := nativecommon.Guard(e.pauses, nativecommon.ModuleFactory); err != nil {
		return [20]byte{}, err
	}
	record, err := e.Record(factory)
	if err != nil {
		return [20]byte{}, err
	}
	modelID := params.ModelID
	if strings.TrimSpace(modelID) == "" {
		return [20]byte{}, fmt.Errorf("%w: model id required", nativecommon.ErrInvalidAddress)
	}
	var existing [20]byte
	used, err := e.state.KVGet(modelKey(factory, modelID), &existing)
	if err != nil {
		return [20]byte{}, err
	}
	if used {
		return [20]byte{}, fmt.Errorf("%w: model id %q has been used", nativecommon.ErrDuplicateIdentifier, modelID)
	}
	if params.MintLimit == 0 {
		return [20]byte{}, fmt.Errorf("%w: mint limit must be positive", nativecommon.ErrInvalidLimit)
	}
	if params.Designer == ([20]byte{}) {
		return [20]byte{}, fmt.Errorf("%w: invalid designer address", nativecommon.ErrInvalidAddress)
	}
	if params.RoyaltyReceiver == ([20]byte{}) {
		return [20]byte{}, fmt.Errorf("%w: invalid royalty receiver address", nativecommon.ErrInvalidAddress)
	}
	if params.Rate > royalty.MaxRate {
		return [20]byte{}, fmt.Errorf("%w: %d exceeds %d", nativecommon.ErrInvalidRate, params.Rate, royalty.MaxRate)
	}

	col, err := e.collections.Create(collection.CreateParams{
		Factory:      factory,
		Registry:     record.Registry,
		ModelID:      modelID,
		Name:         params.Name,
		Designer:     params.Designer,
		PaymentToken: params.PaymentToken,
		MintLimit:    params.MintLimit,
	})
	if err != nil {
		return [20]byte{}, err
	}
	if err := e.royalties.SetOverride(factory, record.Registry, col.Address, params.Rate, params.RoyaltyReceiver); err != nil {
		return [20]byte{}, fmt.Errorf("factory: register royalty: %w", err)
	}
	if err := e.state.KVPut(modelKey(factory, modelID), col.Address); err != nil {
		return [20]byte{}, err
	}
	if err := e.state.KVAppend(listKey(factory), col.Address[:]); err != nil {
		return [20]byte{}, err
	}
	e.emitter.Emit(events.CollectionCreated{
		Factory:      factory,
		Collection:   col.Address,
		ModelID:      modelID,
		Name:         params.Name,
		Designer:     params.Designer,
		PaymentToken: params.PaymentToken,
		MintLimit:    params.MintLimit,
	})
	return col.Address, nil
}

// ChangeRegistryReference switches the registry handed to future collections.
func (e *Engine) ChangeRegistryReference(caller, factory, registry [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	record, err := e.Record(factory)
	if err != nil {
		return err
	}
	if caller != record.Owner {
		return nativecommon.ErrUnauthorized
	}
	if err := e.liveRegistry(registry); err != nil {
		return err
	}
	old := record.Registry
	record.Registry = registry
	if err := e.state.KVPut(recordKey(factory), record); err != nil {
		return err
	}
	e.emitter.Emit(events.FactoryRegistryUpdated{Factory: factory, Caller: caller, Old: old, New: registry})
	return nil
}

// Collection returns the collection registered for modelID.
func (e *Engine) Collection(factory [20]byte, modelID string) ([20]byte, error) {
	if e == nil || e.state == nil {
		return [20]byte{}, errNilState
	}
	var addr [20]byte
	ok, err := e.state.KVGet(modelKey(factory, modelID), &addr)
	if err != nil {
		return [20]byte{}, err
	}
	if !ok {
		return [20]byte{}, fmt.Errorf("%w: model id %q", nativecommon.ErrNotFound, modelID)
	}
	return addr, nil
}

// Collections lists the collections created by factory in creation order.
func (e *Engine) Collections(factory [20]byte) ([][20]byte, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	var raw [][]byte
	if err := e.state.KVGetList(listKey(factory), &raw); err != nil {
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
