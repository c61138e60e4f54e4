package formula

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/directory"
)

var errNilState = errors.New("formula: state not configured")

var (
	recordPrefix = []byte("formula/record/")
	pricePrefix  = []byte("formula/price/")
)

type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

type deployer interface {
	Deploy(deployer [20]byte, kind directory.Kind) ([20]byte, error)
}

// Record is the persisted header of a price formula instance.
type Record struct {
	Address [20]byte
	Owner   [20]byte
}

// Engine maps formula types to unit prices. Each deployed formula instance
// keeps its own price table; unset types price at zero.
type Engine struct {
	state     engineState
	directory deployer
	emitter   events.Emitter
}

// NewEngine constructs a formula engine with a no-op emitter.
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

func recordKey(formula [20]byte) []byte {
	return append(append([]byte(nil), recordPrefix...), formula[:]...)
}

func priceKey(formula [20]byte, formulaType uint64) []byte {
	out := append(append([]byte(nil), pricePrefix...), formula[:]...)
	return append(out, []byte("/"+strconv.FormatUint(formulaType, 10))...)
}

// Deploy allocates a new formula owned by caller.
func (e *Engine) Deploy(caller [20]byte) ([20]byte, error) {
	if e == nil || e.state == nil {
		return [20]byte{}, errNilState
	}
	if e.directory == nil {
		return [20]byte{}, fmt.Errorf("formula: directory not configured")
	}
	addr, err := e.directory.Deploy(caller, directory.KindPriceFormula)
	if err != nil {
		return [20]byte{}, err
	}
	if err := e.state.KVPut(recordKey(addr), &Record{Address: addr, Owner: caller}); err != nil {
		return [20]byte{}, err
	}
	return addr, nil
}

// Record returns the header of the formula at addr.
func (e *Engine) Record(formula [20]byte) (*Record, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record := new(Record)
	ok, err := e.state.KVGet(recordKey(formula), record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: price formula %x", nativecommon.ErrNotFound, formula)
	}
	return record, nil
}

// SetFormulaPrice sets the unit price for formulaType. Only the formula owner
// may change prices.
func (e *Engine) SetFormulaPrice(caller, formula [20]byte, formulaType uint64, price *big.Int) error {
	record, err := e.Record(formula)
	if err != nil {
		return err
	}
	if caller != record.Owner {
		return nativecommon.ErrUnauthorized
	}
	if formulaType == 0 {
		return fmt.Errorf("%w: zero formula type", nativecommon.ErrUnsupportedFormula)
	}
	if price == nil || price.Sign() < 0 {
		return fmt.Errorf("%w: price must be non-negative", nativecommon.ErrInvalidPayment)
	}
	previous, err := e.UnitPrice(formula, formulaType)
	if err != nil {
		return err
	}
	if err := e.state.KVPut(priceKey(formula, formulaType), new(big.Int).Set(price)); err != nil {
		return err
	}
	e.emitter.Emit(events.FormulaPriceSet{
		Formula:     formula,
		FormulaType: formulaType,
		Old:         previous,
		New:         new(big.Int).Set(price),
	})
	return nil
}

// UnitPrice returns the configured price of formulaType. Type zero is never
// valid.
func (e *Engine) UnitPrice(formula [20]byte, formulaType uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if formulaType == 0 {
		return nil, fmt.Errorf("%w: zero formula type", nativecommon.ErrUnsupportedFormula)
	}
	price := new(big.Int)
	ok, err := e.state.KVGet(priceKey(formula, formulaType), price)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return price, nil
}

// TokenPrice returns the unit price of formulaType as quoted for collection.
func (e *Engine) TokenPrice(formula [20]byte, formulaType uint64, collection [20]byte) (*big.Int, error) {
	if collection == ([20]byte{}) {
		return nil, fmt.Errorf("%w: zero collection address", nativecommon.ErrInvalidAddress)
	}
	return e.UnitPrice(formula, formulaType)
}
