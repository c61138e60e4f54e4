package core

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nfidao/nfi-smart-contract/native/collection"
	"github.com/nfidao/nfi-smart-contract/native/factory"
	"github.com/nfidao/nfi-smart-contract/observability"
)

const (
	moduleFactory    = "factory"
	moduleCollection = "collection"
)

// DeployFactory allocates a collection factory owned by caller.
func (n *Node) DeployFactory(ctx context.Context, caller, registry [20]byte) ([20]byte, error) {
	var addr [20]byte
	err := n.execute(ctx, moduleFactory, "deploy", func(e *engines) error {
		var err error
		addr, err = e.factory.Deploy(caller, registry)
		return err
	})
	return addr, err
}

// CreateCollection creates and indexes a collection for params.ModelID.
func (n *Node) CreateCollection(ctx context.Context, caller, factoryAddr [20]byte, params factory.CreateParams) ([20]byte, error) {
	var addr [20]byte
	err := n.execute(ctx, moduleFactory, "create_collection", func(e *engines) error {
		var err error
		addr, err = e.factory.CreateCollection(caller, factoryAddr, params)
		return err
	})
	return addr, err
}

func (n *Node) ChangeFactoryRegistry(ctx context.Context, caller, factoryAddr, registry [20]byte) error {
	return n.execute(ctx, moduleFactory, "change_registry", func(e *engines) error {
		return e.factory.ChangeRegistryReference(caller, factoryAddr, registry)
	})
}

func (n *Node) FactoryRecord(factoryAddr [20]byte) (*factory.Record, error) {
	var out *factory.Record
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.factory.Record(factoryAddr)
		return err
	})
	return out, err
}

// FactoryCollection looks up the collection created for modelID.
func (n *Node) FactoryCollection(factoryAddr [20]byte, modelID string) ([20]byte, error) {
	var out [20]byte
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.factory.Collection(factoryAddr, modelID)
		return err
	})
	return out, err
}

func (n *Node) FactoryCollections(factoryAddr [20]byte) ([][20]byte, error) {
	var out [][20]byte
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.factory.Collections(factoryAddr)
		return err
	})
	return out, err
}

// Mint authorises, records and settles a signed purchase. Nothing is
// persisted unless the payment settles.
func (n *Node) Mint(ctx context.Context, caller, collectionAddr [20]byte, req collection.MintRequest, attached *big.Int) (*collection.MintResult, error) {
	var result *collection.MintResult
	err := n.execute(ctx, moduleCollection, "mint", func(e *engines) error {
		var err error
		result, err = e.collections.Mint(caller, collectionAddr, req, attached)
		return err
	})
	if err != nil {
		return nil, err
	}
	currency := "native"
	if result.PaymentToken != ([20]byte{}) {
		currency = common.Address(result.PaymentToken).Hex()
	}
	observability.Issuer().RecordMint(currency, result.Count, result.Total)
	return result, nil
}

func (n *Node) SetBaseURI(ctx context.Context, caller, collectionAddr [20]byte, baseURI string) error {
	return n.execute(ctx, moduleCollection, "set_base_uri", func(e *engines) error {
		return e.collections.SetBaseURI(caller, collectionAddr, baseURI)
	})
}

func (n *Node) SetDesigner(ctx context.Context, caller, collectionAddr, designer [20]byte) error {
	return n.execute(ctx, moduleCollection, "set_designer", func(e *engines) error {
		return e.collections.SetDesigner(caller, collectionAddr, designer)
	})
}

func (n *Node) SetCollectionManager(ctx context.Context, caller, collectionAddr, manager [20]byte) error {
	return n.execute(ctx, moduleCollection, "set_manager", func(e *engines) error {
		return e.collections.SetManager(caller, collectionAddr, manager)
	})
}

func (n *Node) ChangeAuthorizedSigner(ctx context.Context, caller, collectionAddr, signer [20]byte) error {
	return n.execute(ctx, moduleCollection, "change_signer", func(e *engines) error {
		return e.collections.ChangeAuthorizedSigner(caller, collectionAddr, signer)
	})
}

func (n *Node) ChangeRoyaltyRegistry(ctx context.Context, caller, collectionAddr, registry [20]byte) error {
	return n.execute(ctx, moduleCollection, "change_registry", func(e *engines) error {
		return e.collections.ChangeRoyaltyRegistry(caller, collectionAddr, registry)
	})
}

func (n *Node) SetPaymentCurrency(ctx context.Context, caller, collectionAddr, token [20]byte) error {
	return n.execute(ctx, moduleCollection, "set_payment_currency", func(e *engines) error {
		return e.collections.SetPaymentCurrency(caller, collectionAddr, token)
	})
}

func (n *Node) Collection(collectionAddr [20]byte) (*collection.Collection, error) {
	var out *collection.Collection
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.Collection(collectionAddr)
		return err
	})
	return out, err
}

func (n *Node) Collections() ([][20]byte, error) {
	var out [][20]byte
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.Collections()
		return err
	})
	return out, err
}

func (n *Node) Asset(collectionAddr [20]byte, id uint64) (*collection.Asset, error) {
	var out *collection.Asset
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.Asset(collectionAddr, id)
		return err
	})
	return out, err
}

func (n *Node) TokenURI(collectionAddr [20]byte, id uint64) (string, error) {
	var out string
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.TokenURI(collectionAddr, id)
		return err
	})
	return out, err
}

func (n *Node) OwnerOf(collectionAddr [20]byte, id uint64) ([20]byte, error) {
	var out [20]byte
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.OwnerOf(collectionAddr, id)
		return err
	})
	return out, err
}

func (n *Node) BalanceOf(collectionAddr, owner [20]byte) (uint64, error) {
	var out uint64
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.BalanceOf(collectionAddr, owner)
		return err
	})
	return out, err
}

func (n *Node) TotalSupply(collectionAddr [20]byte) (uint64, error) {
	var out uint64
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.TotalSupply(collectionAddr)
		return err
	})
	return out, err
}

func (n *Node) MintLimit(collectionAddr [20]byte) (uint64, error) {
	var out uint64
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.MintLimit(collectionAddr)
		return err
	})
	return out, err
}

func (n *Node) TokenPayment(collectionAddr [20]byte) ([20]byte, error) {
	var out [20]byte
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.TokenPayment(collectionAddr)
		return err
	})
	return out, err
}

// TokenPrice returns the unit price of formulaType for the collection.
func (n *Node) TokenPrice(collectionAddr [20]byte, formulaType uint64) (*big.Int, error) {
	var out *big.Int
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.TokenPrice(collectionAddr, formulaType)
		return err
	})
	return out, err
}

func (n *Node) ContractURI(collectionAddr [20]byte) (string, error) {
	var out string
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.collections.ContractURI(collectionAddr)
		return err
	})
	return out, err
}

func (n *Node) SupportsInterface(id uint32) bool {
	return collection.NewEngine().SupportsInterface(id)
}

// RoyaltyInfo returns the royalty receiver and amount owed on a sale.
func (n *Node) RoyaltyInfo(collectionAddr [20]byte, id uint64, salePrice *big.Int) ([20]byte, *big.Int, error) {
	var (
		receiver [20]byte
		amount   *big.Int
	)
	err := n.view(func(e *engines) error {
		var err error
		receiver, amount, err = e.collections.RoyaltyInfo(collectionAddr, id, salePrice)
		return err
	})
	return receiver, amount, err
}
