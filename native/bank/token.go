package bank

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/nfidao/nfi-smart-contract/core/events"
	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
	"github.com/nfidao/nfi-smart-contract/native/directory"
)

// Token describes a registered fungible token.
type Token struct {
	Address [20]byte
	Owner   [20]byte
	Symbol  string
	Supply  *big.Int
}

// DeployToken registers a fungible token and credits its whole supply to the
// caller.
func (e *Engine) DeployToken(caller [20]byte, symbol string, supply *big.Int) ([20]byte, error) {
	if err := e.ready(); err != nil {
		return [20]byte{}, err
	}
	if e.directory == nil {
		return [20]byte{}, fmt.Errorf("bank: directory not configured")
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return [20]byte{}, fmt.Errorf("bank: token symbol required")
	}
	if err := validAmount(supply); err != nil {
		return [20]byte{}, err
	}
	addr, err := e.directory.Deploy(caller, directory.KindToken)
	if err != nil {
		return [20]byte{}, err
	}
	token := &Token{Address: addr, Owner: caller, Symbol: symbol, Supply: new(big.Int).Set(supply)}
	if err := e.state.KVPut(key(tokenPrefix, addr), token); err != nil {
		return [20]byte{}, err
	}
	if err := e.putAmount(key(tokenBalancePrefix, addr, caller), new(big.Int).Set(supply)); err != nil {
		return [20]byte{}, err
	}
	e.emit(events.TokenDeployed{Token: addr, Owner: caller, Symbol: symbol, Supply: new(big.Int).Set(supply)})
	return addr, nil
}

// Token returns the registered token at addr.
func (e *Engine) Token(addr [20]byte) (*Token, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	token := new(Token)
	ok, err := e.state.KVGet(key(tokenPrefix, addr), token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: token %x not registered", nativecommon.ErrInvalidAddress, addr)
	}
	return token, nil
}

// TokenBalance returns the balance of owner in token.
func (e *Engine) TokenBalance(token, owner [20]byte) (*big.Int, error) {
	if _, err := e.Token(token); err != nil {
		return nil, err
	}
	return e.getAmount(key(tokenBalancePrefix, token, owner))
}

// Approve sets the amount spender may pull from owner's token balance.
func (e *Engine) Approve(owner, token, spender [20]byte, amount *big.Int) error {
	if _, err := e.Token(token); err != nil {
		return err
	}
	if spender == ([20]byte{}) {
		return fmt.Errorf("%w: spender", nativecommon.ErrInvalidAddress)
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	if err := e.putAmount(key(allowancePrefix, token, owner, spender), new(big.Int).Set(amount)); err != nil {
		return err
	}
	e.emit(events.TokenApproval{Token: token, Owner: owner, Spender: spender, Amount: new(big.Int).Set(amount)})
	return nil
}

// Allowance returns the remaining amount spender may pull from owner.
func (e *Engine) Allowance(token, owner, spender [20]byte) (*big.Int, error) {
	if _, err := e.Token(token); err != nil {
		return nil, err
	}
	return e.getAmount(key(allowancePrefix, token, owner, spender))
}

// TransferToken moves amount of token from the caller to the recipient.
func (e *Engine) TransferToken(from, token, to [20]byte, amount *big.Int) error {
	if _, err := e.Token(token); err != nil {
		return err
	}
	return e.moveToken(token, from, to, amount)
}

// TransferFrom lets spender pull amount of token from owner into to under a
// previously granted allowance.
func (e *Engine) TransferFrom(spender, token, from, to [20]byte, amount *big.Int) error {
	if _, err := e.Token(token); err != nil {
		return err
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	allowanceKey := key(allowancePrefix, token, from, spender)
	allowance, err := e.getAmount(allowanceKey)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: insufficient allowance %s for %s", nativecommon.ErrInsufficientFunds, allowance, amount)
	}
	if err := e.moveToken(token, from, to, amount); err != nil {
		return err
	}
	return e.putAmount(allowanceKey, allowance.Sub(allowance, amount))
}

func (e *Engine) moveToken(token, from, to [20]byte, amount *big.Int) error {
	if to == ([20]byte{}) {
		return fmt.Errorf("%w: token recipient", nativecommon.ErrInvalidAddress)
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	fromBalance, err := e.getAmount(key(tokenBalancePrefix, token, from))
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: token balance %s below %s", nativecommon.ErrInsufficientFunds, fromBalance, amount)
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	toBalance, err := e.getAmount(key(tokenBalancePrefix, token, to))
	if err != nil {
		return err
	}
	if err := e.putAmount(key(tokenBalancePrefix, token, from), new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	if err := e.putAmount(key(tokenBalancePrefix, token, to), new(big.Int).Add(toBalance, amount)); err != nil {
		return err
	}
	e.emit(events.TokenTransfer{Token: token, From: from, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}
