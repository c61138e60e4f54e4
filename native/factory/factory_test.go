package factory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfidao/nfi-smart-contract/core/events"
	"github.com/nfidao/nfi-smart-contract/core/state"
	"github.com/nfidao/nfi-smart-contract/native/collection"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/directory"
	"github.com/nfidao/nfi-smart-contract/native/royalty"
	"github.com/nfidao/nfi-smart-contract/storage"
)

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(evt events.Event) { r.events = append(r.events, evt) }

var (
	deployer        = [20]byte{0x01}
	designer        = [20]byte{0x02}
	royaltyReceiver = [20]byte{0x03}
	defaultReceiver = [20]byte{0x04}
	colOwner        = [20]byte{0x05}
	colManager      = [20]byte{0x06}
	colSigner       = [20]byte{0x07}
	stranger        = [20]byte{0x08}
)

type fixture struct {
	royalty     *royalty.Engine
	collections *collection.Engine
	engine      *Engine
	emitter     *recordingEmitter
	registry    [20]byte
	factory     [20]byte
}

func deployRegistry(t *testing.T, engine *royalty.Engine) [20]byte {
	t.Helper()
	registry, err := engine.Deploy(deployer)
	require.NoError(t, err)
	require.NoError(t, engine.Initialize(deployer, registry, royalty.InitParams{
		DefaultReceiver: defaultReceiver,
		DefaultRate:     100,
		Roles: &royalty.Roles{
			CollectionOwner:   colOwner,
			CollectionManager: colManager,
			CollectionSigner:  colSigner,
		},
	}))
	return registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	dir := directory.New(manager)
	f := &fixture{emitter: &recordingEmitter{}}

	f.royalty = royalty.NewEngine()
	f.royalty.SetState(manager)
	f.royalty.SetDirectory(dir)
	f.registry = deployRegistry(t, f.royalty)

	f.collections = collection.NewEngine()
	f.collections.SetState(manager)
	f.collections.SetDirectory(dir)
	f.collections.SetRegistry(f.royalty)

	f.engine = NewEngine()
	f.engine.SetState(manager)
	f.engine.SetDirectory(dir)
	f.engine.SetCollections(f.collections)
	f.engine.SetRoyalties(f.royalty)
	f.engine.SetEmitter(f.emitter)

	var err error
	f.factory, err = f.engine.Deploy(deployer, f.registry)
	require.NoError(t, err)
	require.NoError(t, f.royalty.ChangeModelFactory(deployer, f.registry, f.factory))
	return f
}

func params(modelID string) CreateParams {
	return CreateParams{
		Name:            "TEST",
		ModelID:         modelID,
		Designer:        designer,
		RoyaltyReceiver: royaltyReceiver,
		Rate:            250,
		MintLimit:       100,
	}
}

func TestCreateCollectionRegistersOverride(t *testing.T) {
	f := newFixture(t)

	addr, err := f.engine.CreateCollection(stranger, f.factory, params("ID"))
	require.NoError(t, err)

	indexed, err := f.engine.Collection(f.factory, "ID")
	require.NoError(t, err)
	require.Equal(t, addr, indexed)

	receiver, rate, err := f.royalty.Resolve(f.registry, addr)
	require.NoError(t, err)
	require.Equal(t, royaltyReceiver, receiver)
	require.Equal(t, uint64(250), rate)

	col, err := f.collections.Collection(addr)
	require.NoError(t, err)
	require.Equal(t, colManager, col.Manager)
	require.Equal(t, f.registry, col.Registry)
	require.Equal(t, f.factory, col.Factory)

	created, ok := f.emitter.events[len(f.emitter.events)-1].(events.CollectionCreated)
	require.True(t, ok)
	require.Equal(t, "ID", created.ModelID)
	require.Equal(t, addr, created.Collection)

	listed, err := f.engine.Collections(f.factory)
	require.NoError(t, err)
	require.Equal(t, [][20]byte{addr}, listed)
}

func TestModelIDUniqueness(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CreateCollection(stranger, f.factory, params("ID"))
	require.NoError(t, err)

	dup := params("ID")
	dup.Name = "OTHER"
	dup.MintLimit = 5
	_, err = f.engine.CreateCollection(deployer, f.factory, dup)
	require.ErrorIs(t, err, nativecommon.ErrDuplicateIdentifier)

	padded, err := f.engine.CreateCollection(deployer, f.factory, params(" ID "))
	require.NoError(t, err)
	byKey, err := f.engine.Collection(f.factory, " ID ")
	require.NoError(t, err)
	require.Equal(t, padded, byKey)
	exact, err := f.engine.Collection(f.factory, "ID")
	require.NoError(t, err)
	require.NotEqual(t, padded, exact)
}

func TestCreateCollectionValidation(t *testing.T) {
	f := newFixture(t)

	p := params("A")
	p.MintLimit = 0
	_, err := f.engine.CreateCollection(deployer, f.factory, p)
	require.ErrorIs(t, err, nativecommon.ErrInvalidLimit)

	p = params("A")
	p.Designer = [20]byte{}
	_, err = f.engine.CreateCollection(deployer, f.factory, p)
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)

	p = params("A")
	p.RoyaltyReceiver = [20]byte{}
	_, err = f.engine.CreateCollection(deployer, f.factory, p)
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)

	p = params("A")
	p.Rate = royalty.MaxRate + 1
	_, err = f.engine.CreateCollection(deployer, f.factory, p)
	require.ErrorIs(t, err, nativecommon.ErrInvalidRate)

	_, err = f.engine.CreateCollection(deployer, f.factory, params("   "))
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)

	_, err = f.engine.Collection(f.factory, "A")
	require.ErrorIs(t, err, nativecommon.ErrNotFound)
}

func TestCreateCollectionWhilePaused(t *testing.T) {
	f := newFixture(t)
	f.engine.SetPauses(factoryPaused{})
	_, err := f.engine.CreateCollection(deployer, f.factory, params("P"))
	require.ErrorIs(t, err, nativecommon.ErrModulePaused)
}

type factoryPaused struct{}

func (factoryPaused) IsPaused(module string) bool { return module == nativecommon.ModuleFactory }

func TestChangeRegistryReference(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.engine.ChangeRegistryReference(stranger, f.factory, f.registry), nativecommon.ErrUnauthorized)
	require.ErrorIs(t, f.engine.ChangeRegistryReference(deployer, f.factory, [20]byte{}), nativecommon.ErrInvalidAddress)
	require.ErrorIs(t, f.engine.ChangeRegistryReference(deployer, f.factory, designer), nativecommon.ErrInvalidAddress)

	next := deployRegistry(t, f.royalty)
	require.NoError(t, f.engine.ChangeRegistryReference(deployer, f.factory, next))
	record, err := f.engine.Record(f.factory)
	require.NoError(t, err)
	require.Equal(t, next, record.Registry)

	// The new registry has not yet accepted this factory.
	_, err = f.engine.CreateCollection(deployer, f.factory, params("NEXT"))
	require.ErrorIs(t, err, nativecommon.ErrUnauthorized)

	require.NoError(t, f.royalty.ChangeModelFactory(deployer, next, f.factory))
	addr, err := f.engine.CreateCollection(deployer, f.factory, params("NEXT"))
	require.NoError(t, err)
	col, err := f.collections.Collection(addr)
	require.NoError(t, err)
	require.Equal(t, next, col.Registry)
}

func TestDeployRequiresLiveRegistry(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Deploy(deployer, [20]byte{})
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)
	_, err = f.engine.Deploy(deployer, f.factory)
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)
}
