package royalty

import (
	"errors"
	"fmt"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/directory"
)

var errNilState = errors.New("royalty: state not configured")

var (
	registryPrefix = []byte("royalty/registry/")
	overridePrefix = []byte("royalty/override/")
)

type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

type deployer interface {
	Deploy(deployer [20]byte, kind directory.Kind) ([20]byte, error)
}

// Engine implements the layered royalty registry: a default receiver and rate
// plus optional per-collection overrides.
type Engine struct {
	state     engineState
	directory deployer
	emitter   events.Emitter
}

// NewEngine constructs a royalty engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetDirectory configures the address directory used by Deploy.
func (e *Engine) SetDirectory(d deployer) { e.directory = d }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func registryKey(registry [20]byte) []byte {
	return append(append([]byte(nil), registryPrefix...), registry[:]...)
}

func overrideKey(registry, collection [20]byte) []byte {
	out := append(append([]byte(nil), overridePrefix...), registry[:]...)
	return append(out, collection[:]...)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return nil
}

func (e *Engine) putRegistry(reg *Registry) error {
	return e.state.KVPut(registryKey(reg.Address), reg)
}

// Deploy allocates an uninitialised registry. Only the deployer may initialise
// it.
func (e *Engine) Deploy(caller [20]byte) ([20]byte, error) {
	if err := e.ready(); err != nil {
		return [20]byte{}, err
	}
	if e.directory == nil {
		return [20]byte{}, fmt.Errorf("royalty: directory not configured")
	}
	addr, err := e.directory.Deploy(caller, directory.KindRoyaltyRegistry)
	if err != nil {
		return [20]byte{}, err
	}
	if err := e.putRegistry(&Registry{Address: addr, Owner: caller}); err != nil {
		return [20]byte{}, err
	}
	return addr, nil
}

// Initialize configures defaults exactly once.
func (e *Engine) Initialize(caller, registry [20]byte, params InitParams) error {
	reg, err := e.load(registry)
	if err != nil {
		return err
	}
	if reg.Initialized {
		return nativecommon.ErrAlreadyInitialized
	}
	if caller != reg.Owner {
		return nativecommon.ErrUnauthorized
	}
	if params.DefaultReceiver == ([20]byte{}) {
		return fmt.Errorf("%w: invalid royalty receiver address", nativecommon.ErrInvalidAddress)
	}
	if params.DefaultRate > MaxRate {
		return fmt.Errorf("%w: %d exceeds %d", nativecommon.ErrInvalidRate, params.DefaultRate, MaxRate)
	}
	if params.Roles != nil {
		roles := params.Roles
		if roles.CollectionOwner == ([20]byte{}) || roles.CollectionManager == ([20]byte{}) || roles.CollectionSigner == ([20]byte{}) {
			return fmt.Errorf("%w: collection role", nativecommon.ErrInvalidAddress)
		}
		reg.CollectionOwner = roles.CollectionOwner
		reg.CollectionManager = roles.CollectionManager
		reg.CollectionSigner = roles.CollectionSigner
	}
	reg.Initialized = true
	reg.DefaultReceiver = params.DefaultReceiver
	reg.DefaultRate = params.DefaultRate
	if err := e.putRegistry(reg); err != nil {
		return err
	}
	e.emitter.Emit(events.RegistryInitialized{
		Registry: registry,
		Owner:    reg.Owner,
		Receiver: reg.DefaultReceiver,
		Rate:     reg.DefaultRate,
	})
	return nil
}

func (e *Engine) load(registry [20]byte) (*Registry, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	reg := new(Registry)
	ok, err := e.state.KVGet(registryKey(registry), reg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: royalty registry %x", nativecommon.ErrNotFound, registry)
	}
	return reg, nil
}

// State returns a copy of the registry state.
func (e *Engine) State(registry [20]byte) (*Registry, error) {
	return e.load(registry)
}

// Defaults returns the default receiver and rate of the registry.
func (e *Engine) Defaults(registry [20]byte) ([20]byte, uint64, error) {
	reg, err := e.load(registry)
	if err != nil {
		return [20]byte{}, 0, err
	}
	return reg.DefaultReceiver, reg.DefaultRate, nil
}

// Override returns the override stored for collection, if any.
func (e *Engine) Override(registry, collection [20]byte) (*Override, error) {
	if _, err := e.load(registry); err != nil {
		return nil, err
	}
	override := new(Override)
	if _, err := e.state.KVGet(overrideKey(registry, collection), override); err != nil {
		return nil, err
	}
	return override, nil
}

// Resolve returns the receiver and rate that apply to collection. The override
// rate wins when set; the override receiver wins only when it is non-zero.
func (e *Engine) Resolve(registry, collection [20]byte) ([20]byte, uint64, error) {
	reg, err := e.load(registry)
	if err != nil {
		return [20]byte{}, 0, err
	}
	override := new(Override)
	if _, err := e.state.KVGet(overrideKey(registry, collection), override); err != nil {
		return [20]byte{}, 0, err
	}
	if !override.IsSet {
		return reg.DefaultReceiver, reg.DefaultRate, nil
	}
	receiver := override.Receiver
	if receiver == ([20]byte{}) {
		receiver = reg.DefaultReceiver
	}
	return receiver, override.Rate, nil
}
