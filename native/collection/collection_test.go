package collection

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfidao/nfi-smart-contract/core/events"
	"github.com/nfidao/nfi-smart-contract/core/state"
	"github.com/nfidao/nfi-smart-contract/crypto"
	"github.com/nfidao/nfi-smart-contract/native/bank"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/directory"
	"github.com/nfidao/nfi-smart-contract/native/formula"
	"github.com/nfidao/nfi-smart-contract/native/royalty"
	"github.com/nfidao/nfi-smart-contract/storage"
)

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(evt events.Event) { r.events = append(r.events, evt) }

func (r *recordingEmitter) count(eventType string) int {
	n := 0
	for _, evt := range r.events {
		if evt.EventType() == eventType {
			n++
		}
	}
	return n
}

var (
	deployer        = [20]byte{0x01}
	designer        = [20]byte{0x02}
	colManager      = [20]byte{0x03}
	colOwner        = [20]byte{0x04}
	royaltyReceiver = [20]byte{0x05}
	factoryAddr     = [20]byte{0x06}
	buyer           = [20]byte{0x07}
	bob             = [20]byte{0x08}
)

const defaultRate uint64 = 100

type fixture struct {
	manager    *state.Manager
	dir        *directory.Directory
	royalty    *royalty.Engine
	formula    *formula.Engine
	bank       *bank.Engine
	engine     *Engine
	emitter    *recordingEmitter
	signer     *crypto.PrivateKey
	registry   [20]byte
	formulaID  [20]byte
	collection [20]byte
	unitPrice  *big.Int
}

func newFixture(t *testing.T, mintLimit uint64, unitPrice *big.Int) *fixture {
	t.Helper()
	f := &fixture{
		manager:   state.NewManager(storage.NewMemDB()),
		emitter:   &recordingEmitter{},
		unitPrice: unitPrice,
	}
	f.dir = directory.New(f.manager)

	signer, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	f.signer = signer

	f.royalty = royalty.NewEngine()
	f.royalty.SetState(f.manager)
	f.royalty.SetDirectory(f.dir)
	f.registry, err = f.royalty.Deploy(deployer)
	require.NoError(t, err)
	require.NoError(t, f.royalty.Initialize(deployer, f.registry, royalty.InitParams{
		DefaultReceiver: royaltyReceiver,
		DefaultRate:     defaultRate,
		Roles: &royalty.Roles{
			CollectionOwner:   colOwner,
			CollectionManager: colManager,
			CollectionSigner:  signer.PubKey().Address().Bytes(),
		},
	}))

	f.formula = formula.NewEngine()
	f.formula.SetState(f.manager)
	f.formula.SetDirectory(f.dir)
	f.formulaID, err = f.formula.Deploy(deployer)
	require.NoError(t, err)
	require.NoError(t, f.formula.SetFormulaPrice(deployer, f.formulaID, 1, unitPrice))
	require.NoError(t, f.royalty.ChangePriceFormula(deployer, f.registry, f.formulaID))

	f.bank = bank.NewEngine()
	f.bank.SetState(f.manager)
	f.bank.SetDirectory(f.dir)

	f.engine = NewEngine()
	f.engine.SetState(f.manager)
	f.engine.SetDirectory(f.dir)
	f.engine.SetRegistry(f.royalty)
	f.engine.SetPriceSource(f.formula)
	f.engine.SetLedger(f.bank)
	f.engine.SetEmitter(f.emitter)
	f.engine.SetNowFunc(func() int64 { return 1_700_000_000 })

	col, err := f.engine.Create(CreateParams{
		Factory:   factoryAddr,
		Registry:  f.registry,
		ModelID:   "ID",
		Name:      "TEST",
		Designer:  designer,
		MintLimit: mintLimit,
	})
	require.NoError(t, err)
	f.collection = col.Address
	return f
}

func (f *fixture) request(t *testing.T, caller [20]byte, count uint64, prefix string) MintRequest {
	t.Helper()
	uris := make([]string, count)
	for i := range uris {
		uris[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	req := MintRequest{Receiver: caller, URIs: uris, FormulaType: 1, TotalCount: count}
	sig, err := SignMint(f.signer, caller, f.collection, req)
	require.NoError(t, err)
	req.Signature = sig
	return req
}

func total(price *big.Int, n int64) *big.Int {
	return new(big.Int).Mul(price, big.NewInt(n))
}

func TestCreateSnapshotsRegistryRoles(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))

	col, err := f.engine.Collection(f.collection)
	require.NoError(t, err)
	require.Equal(t, colManager, col.Manager)
	require.Equal(t, colOwner, col.Owner)
	require.Equal(t, f.signer.PubKey().Address().Bytes(), col.AuthorizedSigner)
	require.Equal(t, "ID", col.Symbol)
	require.Equal(t, uint64(1_700_000_000), col.CreatedAt)

	// Later registry changes do not reach existing collections.
	require.NoError(t, f.royalty.ChangeCollectionSigner(deployer, f.registry, bob))
	col, err = f.engine.Collection(f.collection)
	require.NoError(t, err)
	require.Equal(t, f.signer.PubKey().Address().Bytes(), col.AuthorizedSigner)

	listed, err := f.engine.Collections()
	require.NoError(t, err)
	require.Equal(t, [][20]byte{f.collection}, listed)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))
	base := CreateParams{Factory: factoryAddr, Registry: f.registry, ModelID: "X", Designer: designer, MintLimit: 1}

	p := base
	p.MintLimit = 0
	_, err := f.engine.Create(p)
	require.ErrorIs(t, err, nativecommon.ErrInvalidLimit)

	p = base
	p.Designer = [20]byte{}
	_, err = f.engine.Create(p)
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)

	p = base
	p.Registry = f.formulaID
	_, err = f.engine.Create(p)
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)

	p = base
	p.PaymentToken = bob
	_, err = f.engine.Create(p)
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)
}

func TestMintNativeBatch(t *testing.T) {
	price := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	f := newFixture(t, 100, price)
	require.NoError(t, f.bank.Credit(buyer, total(price, 20)))

	req := f.request(t, buyer, 10, "ipfs://asset")
	result, err := f.engine.Mint(buyer, f.collection, req, total(price, 10))
	require.NoError(t, err)
	require.Equal(t, uint64(0), result.FirstAssetID)
	require.Equal(t, 0, result.Total.Cmp(total(price, 10)))
	require.Equal(t, colManager, result.Payee)

	supply, err := f.engine.TotalSupply(f.collection)
	require.NoError(t, err)
	require.Equal(t, uint64(10), supply)
	for id := uint64(0); id < 10; id++ {
		owner, err := f.engine.OwnerOf(f.collection, id)
		require.NoError(t, err)
		require.Equal(t, buyer, owner)
	}
	balance, err := f.engine.BalanceOf(f.collection, buyer)
	require.NoError(t, err)
	require.Equal(t, uint64(10), balance)

	managerBalance, err := f.bank.NativeBalance(colManager)
	require.NoError(t, err)
	require.Equal(t, 0, managerBalance.Cmp(total(price, 10)))
	escrow, err := f.bank.NativeBalance(f.collection)
	require.NoError(t, err)
	require.Zero(t, escrow.Sign())

	require.Equal(t, 10, f.emitter.count(events.TypeAssetCreated))
	require.Equal(t, 10, f.emitter.count(events.TypeAssetTransferred))
	require.Equal(t, 1, f.emitter.count(events.TypeMintSettled))
}

func TestMintPaymentExactness(t *testing.T) {
	price := big.NewInt(1_000)
	f := newFixture(t, 100, price)
	require.NoError(t, f.bank.Credit(buyer, big.NewInt(1_000_000)))
	req := f.request(t, buyer, 3, "uri")

	for _, attached := range []*big.Int{big.NewInt(0), total(price, 2), big.NewInt(3_001), total(price, 4)} {
		_, err := f.engine.Mint(buyer, f.collection, req, attached)
		require.ErrorIs(t, err, nativecommon.ErrInvalidPayment, "attached %s", attached)
	}
	supply, err := f.engine.TotalSupply(f.collection)
	require.NoError(t, err)
	require.Zero(t, supply)

	_, err = f.engine.Mint(buyer, f.collection, req, total(price, 3))
	require.NoError(t, err)
}

func TestMintReplayFails(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))
	req := f.request(t, buyer, 1, "first")
	_, err := f.engine.Mint(buyer, f.collection, req, nil)
	require.NoError(t, err)

	_, err = f.engine.Mint(buyer, f.collection, req, nil)
	require.ErrorIs(t, err, nativecommon.ErrSignatureReused)

	// Whatever the request says, a spent signature stays spent.
	other := MintRequest{Receiver: bob, URIs: []string{"a", "b"}, FormulaType: 2, TotalCount: 5, Signature: req.Signature}
	_, err = f.engine.Mint(bob, f.collection, other, big.NewInt(7))
	require.ErrorIs(t, err, nativecommon.ErrSignatureReused)
}

func TestMintRejectsMalleatedSignatureOverSpentDigest(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))
	req := f.request(t, buyer, 1, "first")
	_, err := f.engine.Mint(buyer, f.collection, req, nil)
	require.NoError(t, err)

	// Same digest, legacy recovery id encoding: a different byte string that
	// still recovers the signer.
	alt := append([]byte(nil), req.Signature...)
	alt[64] -= 27
	req.Signature = alt
	_, err = f.engine.Mint(buyer, f.collection, req, nil)
	require.ErrorIs(t, err, nativecommon.ErrSignatureReused)
}

func TestMintSignatureValidation(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))

	req := f.request(t, buyer, 2, "uri")
	req.URIs = req.URIs[:1]
	_, err := f.engine.Mint(buyer, f.collection, req, nil)
	require.ErrorIs(t, err, nativecommon.ErrMismatchedLength)

	req = f.request(t, buyer, 1, "uri")
	_, err = f.engine.Mint(bob, f.collection, req, nil)
	require.ErrorIs(t, err, nativecommon.ErrInvalidSignature)

	stranger, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	req = MintRequest{Receiver: buyer, URIs: []string{"uri"}, FormulaType: 1, TotalCount: 1}
	req.Signature, err = SignMint(stranger, buyer, f.collection, req)
	require.NoError(t, err)
	_, err = f.engine.Mint(buyer, f.collection, req, nil)
	require.ErrorIs(t, err, nativecommon.ErrInvalidSignature)

	req = MintRequest{Receiver: buyer, URIs: []string{"uri"}, FormulaType: 0, TotalCount: 1}
	req.Signature, err = SignMint(f.signer, buyer, f.collection, req)
	require.NoError(t, err)
	_, err = f.engine.Mint(buyer, f.collection, req, nil)
	require.ErrorIs(t, err, nativecommon.ErrUnsupportedFormula)
}

func TestMintLimitConservation(t *testing.T) {
	f := newFixture(t, 3, big.NewInt(0))

	_, err := f.engine.Mint(buyer, f.collection, f.request(t, buyer, 2, "a"), nil)
	require.NoError(t, err)
	_, err = f.engine.Mint(buyer, f.collection, f.request(t, buyer, 2, "b"), nil)
	require.ErrorIs(t, err, nativecommon.ErrLimitReached)

	supply, err := f.engine.TotalSupply(f.collection)
	require.NoError(t, err)
	require.Equal(t, uint64(2), supply)

	_, err = f.engine.Mint(buyer, f.collection, f.request(t, buyer, 1, "c"), nil)
	require.NoError(t, err)
	col, err := f.engine.Collection(f.collection)
	require.NoError(t, err)
	require.True(t, col.LimitReached())

	_, err = f.engine.Mint(buyer, f.collection, f.request(t, buyer, 1, "d"), nil)
	require.ErrorIs(t, err, nativecommon.ErrLimitReached)
}

func TestMintWithTokenPayment(t *testing.T) {
	price := big.NewInt(250)
	f := newFixture(t, 100, price)
	token, err := f.bank.DeployToken(buyer, "usdt", big.NewInt(10_000))
	require.NoError(t, err)
	require.NoError(t, f.engine.SetPaymentCurrency(colManager, f.collection, token))

	_, err = f.engine.Mint(buyer, f.collection, f.request(t, buyer, 2, "nat"), big.NewInt(1))
	require.ErrorIs(t, err, nativecommon.ErrNativePaymentNotAllowed)

	_, err = f.engine.Mint(buyer, f.collection, f.request(t, buyer, 2, "noallow"), nil)
	require.ErrorIs(t, err, nativecommon.ErrInsufficientFunds)

	fresh := newFixture(t, 100, price)
	token, err = fresh.bank.DeployToken(buyer, "usdt", big.NewInt(10_000))
	require.NoError(t, err)
	require.NoError(t, fresh.engine.SetPaymentCurrency(colManager, fresh.collection, token))
	require.NoError(t, fresh.bank.Approve(buyer, token, fresh.collection, big.NewInt(500)))

	_, err = fresh.engine.Mint(buyer, fresh.collection, fresh.request(t, buyer, 2, "tok"), nil)
	require.NoError(t, err)
	got, err := fresh.bank.TokenBalance(token, colManager)
	require.NoError(t, err)
	require.Equal(t, int64(500), got.Int64())

	payment, err := fresh.engine.TokenPayment(fresh.collection)
	require.NoError(t, err)
	require.Equal(t, token, payment)
}

func TestMintFailsWhenManagerRejectsNative(t *testing.T) {
	price := big.NewInt(10)
	f := newFixture(t, 100, price)
	require.NoError(t, f.bank.Credit(buyer, big.NewInt(100)))
	require.NoError(t, f.bank.SetRejectsNative(colManager, true))

	_, err := f.engine.Mint(buyer, f.collection, f.request(t, buyer, 1, "x"), price)
	require.ErrorIs(t, err, nativecommon.ErrPaymentForwardFailed)
}

func TestMintWhilePaused(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))
	f.engine.SetPauses(pauseAll{})
	_, err := f.engine.Mint(buyer, f.collection, f.request(t, buyer, 1, "x"), nil)
	require.ErrorIs(t, err, nativecommon.ErrModulePaused)
}

type pauseAll struct{}

func (pauseAll) IsPaused(string) bool { return true }

func TestZeroRateRoyalty(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))
	require.NoError(t, f.royalty.SetOverride(deployer, f.registry, f.collection, 0, royaltyReceiver))

	_, _, err := f.engine.RoyaltyInfo(f.collection, 0, big.NewInt(10))
	require.ErrorIs(t, err, nativecommon.ErrUnknownAsset)

	_, err = f.engine.Mint(buyer, f.collection, f.request(t, buyer, 1, "zero"), nil)
	require.NoError(t, err)

	receiver, amount, err := f.engine.RoyaltyInfo(f.collection, 0, big.NewInt(10))
	require.NoError(t, err)
	require.Equal(t, royaltyReceiver, receiver)
	require.Zero(t, amount.Sign())
}

func TestRoyaltyInfoUsesLiveDefaults(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))
	_, err := f.engine.Mint(buyer, f.collection, f.request(t, buyer, 1, "r"), nil)
	require.NoError(t, err)

	receiver, amount, err := f.engine.RoyaltyInfo(f.collection, 0, big.NewInt(10_000))
	require.NoError(t, err)
	require.Equal(t, royaltyReceiver, receiver)
	require.Equal(t, int64(100), amount.Int64())

	require.NoError(t, f.royalty.ChangeDefaultRate(deployer, f.registry, 1000))
	require.NoError(t, f.royalty.ChangeReceiver(deployer, f.registry, bob))
	receiver, amount, err = f.engine.RoyaltyInfo(f.collection, 0, big.NewInt(10_000))
	require.NoError(t, err)
	require.Equal(t, bob, receiver)
	require.Equal(t, int64(1000), amount.Int64())
}

func TestTokenURIResolution(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))
	req := f.request(t, buyer, 2, "suffix")
	req.URIs[1] = ""
	var err error
	req.Signature, err = SignMint(f.signer, buyer, f.collection, req)
	require.NoError(t, err)
	_, err = f.engine.Mint(buyer, f.collection, req, nil)
	require.NoError(t, err)

	uri, err := f.engine.TokenURI(f.collection, 0)
	require.NoError(t, err)
	require.Equal(t, "suffix-0", uri)
	uri, err = f.engine.TokenURI(f.collection, 1)
	require.NoError(t, err)
	require.Equal(t, "", uri)

	require.NoError(t, f.engine.SetBaseURI(colManager, f.collection, "https://nfi.example/"))
	uri, err = f.engine.TokenURI(f.collection, 0)
	require.NoError(t, err)
	require.Equal(t, "https://nfi.example/suffix-0", uri)
	uri, err = f.engine.TokenURI(f.collection, 1)
	require.NoError(t, err)
	require.Equal(t, "https://nfi.example/1", uri)

	_, err = f.engine.TokenURI(f.collection, 2)
	require.ErrorIs(t, err, nativecommon.ErrUnknownAsset)
}

func TestAdministrativeGates(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))

	require.ErrorIs(t, f.engine.SetBaseURI(bob, f.collection, "x"), nativecommon.ErrUnauthorized)

	require.ErrorIs(t, f.engine.SetDesigner(colManager, f.collection, bob), nativecommon.ErrUnauthorized)
	require.ErrorIs(t, f.engine.SetDesigner(designer, f.collection, [20]byte{}), nativecommon.ErrInvalidAddress)
	require.NoError(t, f.engine.SetDesigner(designer, f.collection, bob))

	require.ErrorIs(t, f.engine.SetManager(colManager, f.collection, [20]byte{}), nativecommon.ErrInvalidAddress)
	newManager := [20]byte{0x99}
	require.NoError(t, f.engine.SetManager(colManager, f.collection, newManager))
	require.NoError(t, f.engine.ChangeAuthorizedSigner(newManager, f.collection, bob))

	// The registry's collection manager keeps acting as a delegate.
	require.NoError(t, f.engine.SetBaseURI(colManager, f.collection, "ipfs://"))
	require.ErrorIs(t, f.engine.SetBaseURI(designer, f.collection, "x"), nativecommon.ErrUnauthorized)

	require.ErrorIs(t, f.engine.ChangeRoyaltyRegistry(newManager, f.collection, f.formulaID), nativecommon.ErrInvalidAddress)
	require.ErrorIs(t, f.engine.ChangeRoyaltyRegistry(newManager, f.collection, [20]byte{}), nativecommon.ErrInvalidAddress)

	other, err := f.royalty.Deploy(deployer)
	require.NoError(t, err)
	require.ErrorIs(t, f.engine.ChangeRoyaltyRegistry(newManager, f.collection, other), nativecommon.ErrInvalidAddress)
	require.NoError(t, f.royalty.Initialize(deployer, other, royalty.InitParams{DefaultReceiver: bob, DefaultRate: 5}))
	require.NoError(t, f.engine.ChangeRoyaltyRegistry(newManager, f.collection, other))

	col, err := f.engine.Collection(f.collection)
	require.NoError(t, err)
	require.Equal(t, bob, col.Designer)
	require.Equal(t, newManager, col.Manager)
	require.Equal(t, bob, col.AuthorizedSigner)
	require.Equal(t, other, col.Registry)
	require.Equal(t, "ipfs://", col.BaseURI)
	require.Equal(t, 1, f.emitter.count(events.TypeRegistryUpdated))
	require.Equal(t, 1, f.emitter.count(events.TypeDesignerUpdated))
}

type brokenRegistry struct {
	*royalty.Engine
	err error
}

func (b brokenRegistry) State([20]byte) (*royalty.Registry, error) { return nil, b.err }

func TestManagerGateSurfacesRegistryFailures(t *testing.T) {
	f := newFixture(t, 100, big.NewInt(0))
	decodeErr := errors.New("rlp: too few elements")
	f.engine.SetRegistry(brokenRegistry{Engine: f.royalty, err: decodeErr})

	err := f.engine.SetBaseURI(bob, f.collection, "x")
	require.ErrorIs(t, err, decodeErr)
	require.Equal(t, "internal", nativecommon.Kind(err))

	// The collection's own manager never consults the registry.
	require.NoError(t, f.engine.SetBaseURI(colManager, f.collection, "x"))

	f.engine.SetRegistry(brokenRegistry{Engine: f.royalty, err: fmt.Errorf("%w: registry", nativecommon.ErrNotFound)})
	require.ErrorIs(t, f.engine.SetBaseURI(bob, f.collection, "y"), nativecommon.ErrUnauthorized)
}

func TestReadHelpers(t *testing.T) {
	f := newFixture(t, 42, big.NewInt(7))

	limit, err := f.engine.MintLimit(f.collection)
	require.NoError(t, err)
	require.Equal(t, uint64(42), limit)

	price, err := f.engine.TokenPrice(f.collection, 1)
	require.NoError(t, err)
	require.Equal(t, int64(7), price.Int64())
	_, err = f.engine.TokenPrice(f.collection, 0)
	require.ErrorIs(t, err, nativecommon.ErrUnsupportedFormula)

	uri, err := f.engine.ContractURI(f.collection)
	require.NoError(t, err)
	require.Equal(t, contractURI(f.collection), uri)
	require.Len(t, uri, 42)

	require.True(t, f.engine.SupportsInterface(InterfaceIDERC2981Royalty))
	require.True(t, f.engine.SupportsInterface(InterfaceIDERC721))
	require.False(t, f.engine.SupportsInterface(0xffffffff))

	_, err = f.engine.BalanceOf(f.collection, [20]byte{})
	require.ErrorIs(t, err, nativecommon.ErrInvalidAddress)
}

func TestPaymentTotalOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err := paymentTotal(huge, 2)
	require.ErrorIs(t, err, nativecommon.ErrInvalidPayment)

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = paymentTotal(tooBig, 1)
	require.ErrorIs(t, err, nativecommon.ErrInvalidPayment)

	got, err := paymentTotal(big.NewInt(3), 4)
	require.NoError(t, err)
	require.Equal(t, int64(12), got.Int64())
}

func TestMigrateSupplyIntoRecord(t *testing.T) {
	manager := state.NewManager(storage.NewMemDB())
	addr := [20]byte{0xc1}
	require.NoError(t, manager.KVPut(addrKey(recordPrefix, addr), &collectionV1{
		Address:   addr,
		ModelID:   "LEGACY",
		Designer:  designer,
		Manager:   colManager,
		MintLimit: 10,
		BaseURI:   "ipfs://",
	}))
	require.NoError(t, manager.KVPut(addrKey(legacySupplyPrefix, addr), uint64(4)))
	require.NoError(t, manager.KVAppend(indexKey, addr[:]))
	require.NoError(t, manager.SetStateVersion(1))

	migrator := state.NewMigrator()
	require.NoError(t, migrator.Register(state.Migration{
		From: 1,
		Name: "collection-supply-into-record",
		Apply: func(m *state.Manager) error {
			return MigrateSupplyIntoRecord(m)
		},
	}))
	from, err := migrator.Run(manager)
	require.NoError(t, err)
	require.Equal(t, uint32(1), from)
	require.NoError(t, state.EnsureStateVersion(manager))

	engine := NewEngine()
	engine.SetState(manager)
	col, err := engine.Collection(addr)
	require.NoError(t, err)
	require.Equal(t, uint64(4), col.MintedCount)
	require.Equal(t, "ipfs://", col.BaseURI)

	ok, err := manager.KVGet(addrKey(legacySupplyPrefix, addr), nil)
	require.NoError(t, err)
	require.False(t, ok)
}
