package directory

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
)

// Kind labels the engine that owns an address.
type Kind string

const (
	KindRoyaltyRegistry Kind = "royalty-registry"
	KindPriceFormula    Kind = "price-formula"
	KindFactory         Kind = "collection-factory"
	KindCollection      Kind = "collection"
	KindToken           Kind = "fungible-token"
)

var (
	nonceKeyPrefix = []byte("directory/nonce/")
	entryKeyPrefix = []byte("directory/entry/")
)

type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Entry records who allocated an address and for which engine.
type Entry struct {
	Kind     string
	Deployer [20]byte
	Nonce    uint64
}

// Directory allocates engine addresses and answers which engine lives at an
// address. Cross references between engines are plain addresses resolved
// through the directory.
type Directory struct {
	state engineState
}

// New constructs a directory over the provided state.
func New(state engineState) *Directory {
	return &Directory{state: state}
}

func nonceKey(addr [20]byte) []byte {
	return append(append([]byte(nil), nonceKeyPrefix...), addr[:]...)
}

func entryKey(addr [20]byte) []byte {
	return append(append([]byte(nil), entryKeyPrefix...), addr[:]...)
}

// Nonce returns the number of addresses allocated by deployer so far.
func (d *Directory) Nonce(deployer [20]byte) (uint64, error) {
	var nonce uint64
	if _, err := d.state.KVGet(nonceKey(deployer), &nonce); err != nil {
		return 0, err
	}
	return nonce, nil
}

// Deploy allocates a fresh address for an engine of the given kind, derived as
// keccak(rlp(deployer, nonce))[12:].
func (d *Directory) Deploy(deployer [20]byte, kind Kind) ([20]byte, error) {
	if d == nil || d.state == nil {
		return [20]byte{}, fmt.Errorf("directory: state not configured")
	}
	if deployer == ([20]byte{}) {
		return [20]byte{}, fmt.Errorf("%w: deployer", nativecommon.ErrInvalidAddress)
	}
	if kind == "" {
		return [20]byte{}, fmt.Errorf("directory: kind required")
	}
	nonce, err := d.Nonce(deployer)
	if err != nil {
		return [20]byte{}, err
	}
	addr := ethcrypto.CreateAddress(common.Address(deployer), nonce)
	ok, err := d.state.KVGet(entryKey(addr), nil)
	if err != nil {
		return [20]byte{}, err
	}
	if ok {
		return [20]byte{}, fmt.Errorf("directory: address %s already allocated", addr.Hex())
	}
	if err := d.state.KVPut(entryKey(addr), &Entry{Kind: string(kind), Deployer: deployer, Nonce: nonce}); err != nil {
		return [20]byte{}, err
	}
	if err := d.state.KVPut(nonceKey(deployer), nonce+1); err != nil {
		return [20]byte{}, err
	}
	return addr, nil
}

// Lookup returns the directory entry for addr.
func (d *Directory) Lookup(addr [20]byte) (*Entry, bool, error) {
	entry := new(Entry)
	ok, err := d.state.KVGet(entryKey(addr), entry)
	if err != nil || !ok {
		return nil, false, err
	}
	return entry, true, nil
}

// Is reports whether addr was allocated for an engine of the given kind.
func (d *Directory) Is(addr [20]byte, kind Kind) (bool, error) {
	if addr == ([20]byte{}) {
		return false, nil
	}
	entry, ok, err := d.Lookup(addr)
	if err != nil || !ok {
		return false, err
	}
	return Kind(entry.Kind) == kind, nil
}
