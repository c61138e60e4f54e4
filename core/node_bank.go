package core

import (
	"context"
	"math/big"

	"github.com/nfidao/nfi-smart-contract/native/bank"
)

const moduleBank = "bank"

// Credit mints native funds into addr. It backs operator funding and tests.
func (n *Node) Credit(ctx context.Context, addr [20]byte, amount *big.Int) error {
	return n.execute(ctx, moduleBank, "credit", func(e *engines) error {
		return e.bank.Credit(addr, amount)
	})
}

// SetRejectsNative marks addr as refusing incoming native transfers.
func (n *Node) SetRejectsNative(ctx context.Context, addr [20]byte, rejects bool) error {
	return n.execute(ctx, moduleBank, "set_rejects_native", func(e *engines) error {
		return e.bank.SetRejectsNative(addr, rejects)
	})
}

func (n *Node) TransferNative(ctx context.Context, from, to [20]byte, amount *big.Int) error {
	return n.execute(ctx, moduleBank, "transfer_native", func(e *engines) error {
		return e.bank.TransferNative(from, to, amount)
	})
}

// DeployToken creates a fungible token with its whole supply held by caller.
func (n *Node) DeployToken(ctx context.Context, caller [20]byte, symbol string, supply *big.Int) ([20]byte, error) {
	var addr [20]byte
	err := n.execute(ctx, moduleBank, "deploy_token", func(e *engines) error {
		var err error
		addr, err = e.bank.DeployToken(caller, symbol, supply)
		return err
	})
	return addr, err
}

func (n *Node) Approve(ctx context.Context, owner, token, spender [20]byte, amount *big.Int) error {
	return n.execute(ctx, moduleBank, "approve", func(e *engines) error {
		return e.bank.Approve(owner, token, spender, amount)
	})
}

func (n *Node) TransferToken(ctx context.Context, from, token, to [20]byte, amount *big.Int) error {
	return n.execute(ctx, moduleBank, "transfer_token", func(e *engines) error {
		return e.bank.TransferToken(from, token, to, amount)
	})
}

func (n *Node) NativeBalance(addr [20]byte) (*big.Int, error) {
	var out *big.Int
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.bank.NativeBalance(addr)
		return err
	})
	return out, err
}

func (n *Node) Token(addr [20]byte) (*bank.Token, error) {
	var out *bank.Token
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.bank.Token(addr)
		return err
	})
	return out, err
}

func (n *Node) TokenBalance(token, owner [20]byte) (*big.Int, error) {
	var out *big.Int
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.bank.TokenBalance(token, owner)
		return err
	})
	return out, err
}

func (n *Node) Allowance(token, owner, spender [20]byte) (*big.Int, error) {
	var out *big.Int
	err := n.view(func(e *engines) error {
		var err error
		out, err = e.bank.Allowance(token, owner, spender)
		return err
	})
	return out, err
}
