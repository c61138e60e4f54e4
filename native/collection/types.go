package collection

import "math/big"

// Collection is the persisted record of one model collection.
type Collection struct {
	Address          [20]byte
	Factory          [20]byte
	Registry         [20]byte
	ModelID          string
	Name             string
	Symbol           string
	Designer         [20]byte
	Manager          [20]byte
	Owner            [20]byte
	AuthorizedSigner [20]byte
	MintLimit        uint64
	MintedCount      uint64
	BaseURI          string
	PaymentToken     [20]byte
	CreatedAt        uint64
}

// LimitReached reports whether the collection can no longer mint.
func (c *Collection) LimitReached() bool {
	return c.MintedCount >= c.MintLimit
}

// NativePayment reports whether mints are paid in the native currency.
func (c *Collection) NativePayment() bool {
	return c.PaymentToken == ([20]byte{})
}

// Asset is a minted unit. URI holds the raw suffix supplied at mint time.
type Asset struct {
	ID    uint64
	Owner [20]byte
	URI   string
}

// CreateParams carries the factory-validated inputs of a new collection.
type CreateParams struct {
	Factory      [20]byte
	Registry     [20]byte
	ModelID      string
	Name         string
	Designer     [20]byte
	PaymentToken [20]byte
	MintLimit    uint64
}

// MintRequest is a signed purchase of TotalCount assets.
type MintRequest struct {
	Receiver    [20]byte
	URIs        []string
	FormulaType uint64
	TotalCount  uint64
	Signature   []byte
}

// MintResult describes a settled mint.
type MintResult struct {
	FirstAssetID uint64
	Count        uint64
	UnitPrice    *big.Int
	Total        *big.Int
	PaymentToken [20]byte
	Payee        [20]byte
}
