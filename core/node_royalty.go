package core

import (
	"context"
	"fmt"
	"math/big"

	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/formula"
	"github.com/nfidao/nfi-smart-contract/native/royalty"
)

const (
	moduleRoyalty = "royalty"
	moduleFormula = "formula"
)

// DeployRegistry allocates an uninitialised royalty registry owned by caller.
func (n *Node) DeployRegistry(ctx context.Context, caller [20]byte) ([20]byte, error) {
	var addr [20]byte
	err := n.execute(ctx, moduleRoyalty, "deploy", func(e *engines) error {
		var err error
		addr, err = e.royalty.Deploy(caller)
		return err
	})
	return addr, err
}

func (n *Node) InitializeRegistry(ctx context.Context, caller, registry [20]byte, params royalty.InitParams) error {
	return n.execute(ctx, moduleRoyalty, "initialize", func(e *engines) error {
		return e.royalty.Initialize(caller, registry, params)
	})
}

func (n *Node) SetRoyaltyOverride(ctx context.Context, caller, registry, collection [20]byte, rate uint64, receiver [20]byte) error {
	return n.execute(ctx, moduleRoyalty, "set_override", func(e *engines) error {
		return e.royalty.SetOverride(caller, registry, collection, rate, receiver)
	})
}

func (n *Node) SetRoyaltyOverrides(ctx context.Context, caller, registry [20]byte, batch royalty.OverrideBatch) error {
	return n.execute(ctx, moduleRoyalty, "set_overrides", func(e *engines) error {
		return e.royalty.SetOverrides(caller, registry, batch)
	})
}

func (n *Node) ChangeDefaultRate(ctx context.Context, caller, registry [20]byte, rate uint64) error {
	return n.execute(ctx, moduleRoyalty, "change_default_rate", func(e *engines) error {
		return e.royalty.ChangeDefaultRate(caller, registry, rate)
	})
}

// RegistryRole names an address slot of a registry that its owner may change.
type RegistryRole string

const (
	RoleReceiver          RegistryRole = "receiver"
	RoleCollectionOwner   RegistryRole = "collection_owner"
	RoleCollectionManager RegistryRole = "collection_manager"
	RoleCollectionSigner  RegistryRole = "collection_signer"
	RoleModelFactory      RegistryRole = "model_factory"
	RolePriceFormula      RegistryRole = "price_formula"
)

// ChangeRegistryAddress updates one address slot of a registry.
func (n *Node) ChangeRegistryAddress(ctx context.Context, caller, registry [20]byte, role RegistryRole, value [20]byte) error {
	change, ok := registryChangers[role]
	if !ok {
		return errUnknownRole(role)
	}
	return n.execute(ctx, moduleRoyalty, "change_"+string(role), func(e *engines) error {
		return change(e.royalty, caller, registry, value)
	})
}

func errUnknownRole(role RegistryRole) error {
	return fmt.Errorf("%w: registry role %q", nativecommon.ErrNotFound, role)
}

var registryChangers = map[RegistryRole]func(*royalty.Engine, [20]byte, [20]byte, [20]byte) error{
	RoleReceiver:          (*royalty.Engine).ChangeReceiver,
	RoleCollectionOwner:   (*royalty.Engine).ChangeCollectionOwner,
	RoleCollectionManager: (*royalty.Engine).ChangeCollectionManager,
	RoleCollectionSigner:  (*royalty.Engine).ChangeCollectionSigner,
	RoleModelFactory:      (*royalty.Engine).ChangeModelFactory,
	RolePriceFormula:      (*royalty.Engine).ChangePriceFormula,
}

func (n *Node) RegistryState(registry [20]byte) (*royalty.Registry, error) {
	var out *royalty.Registry
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.royalty.State(registry)
		return err
	})
	return out, err
}

func (n *Node) RoyaltyOverride(registry, collection [20]byte) (*royalty.Override, error) {
	var out *royalty.Override
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.royalty.Override(registry, collection)
		return err
	})
	return out, err
}

// ResolveRoyalty returns the effective receiver and rate for collection.
func (n *Node) ResolveRoyalty(registry, collection [20]byte) ([20]byte, uint64, error) {
	var (
		receiver [20]byte
		rate     uint64
	)
	err := n.view(func(e *engines) error {
		var err error
		receiver, rate, err = e.royalty.Resolve(registry, collection)
		return err
	})
	return receiver, rate, err
}

// DeployFormula allocates a price formula owned by caller.
func (n *Node) DeployFormula(ctx context.Context, caller [20]byte) ([20]byte, error) {
	var addr [20]byte
	err := n.execute(ctx, moduleFormula, "deploy", func(e *engines) error {
		var err error
		addr, err = e.formula.Deploy(caller)
		return err
	})
	return addr, err
}

func (n *Node) SetFormulaPrice(ctx context.Context, caller, formulaAddr [20]byte, formulaType uint64, price *big.Int) error {
	return n.execute(ctx, moduleFormula, "set_price", func(e *engines) error {
		return e.formula.SetFormulaPrice(caller, formulaAddr, formulaType, price)
	})
}

func (n *Node) FormulaRecord(formulaAddr [20]byte) (*formula.Record, error) {
	var out *formula.Record
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.formula.Record(formulaAddr)
		return err
	})
	return out, err
}

func (n *Node) UnitPrice(formulaAddr [20]byte, formulaType uint64) (*big.Int, error) {
	var out *big.Int
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.formula.UnitPrice(formulaAddr, formulaType)
		return err
	})
	return out, err
}
