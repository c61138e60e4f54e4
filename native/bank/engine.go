package bank

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/directory"
)

var errNilState = errors.New("bank: state not configured")

var (
	nativeBalancePrefix = []byte("bank/native/")
	rejectsPrefix       = []byte("bank/rejects-native/")
	tokenPrefix         = []byte("bank/token/")
	tokenBalancePrefix  = []byte("bank/token-balance/")
	allowancePrefix     = []byte("bank/allowance/")
)

type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

type deployer interface {
	Deploy(deployer [20]byte, kind directory.Kind) ([20]byte, error)
}

// Engine keeps the native currency and fungible token ledgers used to settle
// mint payments.
type Engine struct {
	state     engineState
	directory deployer
	emitter   events.Emitter
}

// NewEngine constructs a bank engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetDirectory configures the address directory used to allocate tokens.
func (e *Engine) SetDirectory(d deployer) { e.directory = d }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return nil
}

func key(prefix []byte, parts ...[20]byte) []byte {
	out := append([]byte(nil), prefix...)
	for _, p := range parts {
		out = append(out, p[:]...)
	}
	return out
}

func (e *Engine) getAmount(k []byte) (*big.Int, error) {
	amount := new(big.Int)
	ok, err := e.state.KVGet(k, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}

func (e *Engine) putAmount(k []byte, amount *big.Int) error {
	return e.state.KVPut(k, amount)
}

func validAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: amount must be non-negative", nativecommon.ErrInvalidPayment)
	}
	return nil
}

// Credit adds amount to the native balance of addr.
func (e *Engine) Credit(addr [20]byte, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if addr == ([20]byte{}) {
		return fmt.Errorf("%w: credit recipient", nativecommon.ErrInvalidAddress)
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	balance, err := e.getAmount(key(nativeBalancePrefix, addr))
	if err != nil {
		return err
	}
	return e.putAmount(key(nativeBalancePrefix, addr), balance.Add(balance, amount))
}

// NativeBalance returns the native balance held by addr.
func (e *Engine) NativeBalance(addr [20]byte) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.getAmount(key(nativeBalancePrefix, addr))
}

// SetRejectsNative marks addr as refusing incoming native transfers.
func (e *Engine) SetRejectsNative(addr [20]byte, rejects bool) error {
	if err := e.ready(); err != nil {
		return err
	}
	return e.state.KVPut(key(rejectsPrefix, addr), rejects)
}

func (e *Engine) rejectsNative(addr [20]byte) (bool, error) {
	var rejects bool
	if _, err := e.state.KVGet(key(rejectsPrefix, addr), &rejects); err != nil {
		return false, err
	}
	return rejects, nil
}

// TransferNative moves amount of native currency from one account to another.
func (e *Engine) TransferNative(from, to [20]byte, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return fmt.Errorf("%w: transfer recipient", nativecommon.ErrInvalidAddress)
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	rejects, err := e.rejectsNative(to)
	if err != nil {
		return err
	}
	if rejects {
		return fmt.Errorf("%w: recipient %x refuses native funds", nativecommon.ErrPaymentForwardFailed, to)
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBalance, err := e.getAmount(key(nativeBalancePrefix, from))
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: native balance %s below %s", nativecommon.ErrInsufficientFunds, fromBalance, amount)
	}
	toBalance, err := e.getAmount(key(nativeBalancePrefix, to))
	if err != nil {
		return err
	}
	if from != to {
		if err := e.putAmount(key(nativeBalancePrefix, from), new(big.Int).Sub(fromBalance, amount)); err != nil {
			return err
		}
		if err := e.putAmount(key(nativeBalancePrefix, to), new(big.Int).Add(toBalance, amount)); err != nil {
			return err
		}
	}
	e.emit(events.NativeTransfer{From: from, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}
