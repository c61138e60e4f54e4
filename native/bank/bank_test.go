package bank

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfidao/nfi-smart-contract/core/events"
	"github.com/nfidao/nfi-smart-contract/core/state"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/directory"
	"github.com/nfidao/nfi-smart-contract/storage"
)

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(evt events.Event) { r.events = append(r.events, evt) }

func newTestEngine(t *testing.T) (*Engine, *recordingEmitter) {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	engine := NewEngine()
	engine.SetState(manager)
	engine.SetDirectory(directory.New(manager))
	emitter := &recordingEmitter{}
	engine.SetEmitter(emitter)
	return engine, emitter
}

var (
	alice = [20]byte{0xa1}
	bob   = [20]byte{0xb0}
	carol = [20]byte{0xc0}
)

func TestTransferNativeMovesBalance(t *testing.T) {
	engine, emitter := newTestEngine(t)
	require.NoError(t, engine.Credit(alice, big.NewInt(100)))

	require.NoError(t, engine.TransferNative(alice, bob, big.NewInt(40)))

	aliceBal, err := engine.NativeBalance(alice)
	require.NoError(t, err)
	require.Equal(t, int64(60), aliceBal.Int64())
	bobBal, err := engine.NativeBalance(bob)
	require.NoError(t, err)
	require.Equal(t, int64(40), bobBal.Int64())
	require.Len(t, emitter.events, 1)
	require.Equal(t, events.TypeNativeTransfer, emitter.events[0].EventType())
}

func TestTransferNativeFailures(t *testing.T) {
	engine, _ := newTestEngine(t)
	require.NoError(t, engine.Credit(alice, big.NewInt(10)))

	err := engine.TransferNative(alice, bob, big.NewInt(11))
	require.ErrorIs(t, err, nativecommon.ErrInsufficientFunds)

	require.NoError(t, engine.SetRejectsNative(bob, true))
	err = engine.TransferNative(alice, bob, big.NewInt(1))
	require.ErrorIs(t, err, nativecommon.ErrPaymentForwardFailed)

	err = engine.TransferNative(alice, [20]byte{}, big.NewInt(1))
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)

	err = engine.TransferNative(alice, carol, big.NewInt(-1))
	require.ErrorIs(t, err, nativecommon.ErrInvalidPayment)
}

func TestTransferFromRequiresAllowance(t *testing.T) {
	engine, _ := newTestEngine(t)
	token, err := engine.DeployToken(alice, "usdt", big.NewInt(1_000))
	require.NoError(t, err)

	err = engine.TransferFrom(carol, token, alice, bob, big.NewInt(10))
	require.ErrorIs(t, err, nativecommon.ErrInsufficientFunds)

	require.NoError(t, engine.Approve(alice, token, carol, big.NewInt(25)))
	require.NoError(t, engine.TransferFrom(carol, token, alice, bob, big.NewInt(10)))

	remaining, err := engine.Allowance(token, alice, carol)
	require.NoError(t, err)
	require.Equal(t, int64(15), remaining.Int64())
	bobBal, err := engine.TokenBalance(token, bob)
	require.NoError(t, err)
	require.Equal(t, int64(10), bobBal.Int64())
	aliceBal, err := engine.TokenBalance(token, alice)
	require.NoError(t, err)
	require.Equal(t, int64(990), aliceBal.Int64())
}

func TestTransferFromRejectsBalanceShortfall(t *testing.T) {
	engine, _ := newTestEngine(t)
	token, err := engine.DeployToken(alice, "usdt", big.NewInt(5))
	require.NoError(t, err)
	require.NoError(t, engine.Approve(alice, token, carol, big.NewInt(50)))

	err = engine.TransferFrom(carol, token, alice, bob, big.NewInt(6))
	require.ErrorIs(t, err, nativecommon.ErrInsufficientFunds)
}

func TestUnknownTokenIsInvalidAddress(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.TokenBalance([20]byte{0x42}, alice)
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)
}
