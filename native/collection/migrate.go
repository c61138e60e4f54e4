package collection

import "fmt"

// legacySupplyPrefix keyed the separate minted-count counter of schema v1.
var legacySupplyPrefix = []byte("collection/supply/")

// collectionV1 is the schema v1 record layout, before the minted count moved
// into the record.
type collectionV1 struct {
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
	BaseURI          string
	PaymentToken     [20]byte
}

type migrationState interface {
	engineState
	KVDelete(key []byte) error
}

// MigrateSupplyIntoRecord lifts schema v1 collections to v2 by folding the
// legacy supply counter into the collection record.
func MigrateSupplyIntoRecord(st migrationState) error {
	var raw [][]byte
	if err := st.KVGetList(indexKey, &raw); err != nil {
		return err
	}
	for _, entry := range raw {
		var addr [20]byte
		copy(addr[:], entry)
		legacy := new(collectionV1)
		ok, err := st.KVGet(addrKey(recordPrefix, addr), legacy)
		if err != nil {
			return fmt.Errorf("collection %x: decode v1 record: %w", addr, err)
		}
		if !ok {
			return fmt.Errorf("collection %x: indexed but missing", addr)
		}
		var supply uint64
		supplyKey := addrKey(legacySupplyPrefix, addr)
		if _, err := st.KVGet(supplyKey, &supply); err != nil {
			return err
		}
		if supply > legacy.MintLimit {
			return fmt.Errorf("collection %x: supply %d exceeds limit %d", addr, supply, legacy.MintLimit)
		}
		upgraded := &Collection{
			Address:          legacy.Address,
			Factory:          legacy.Factory,
			Registry:         legacy.Registry,
			ModelID:          legacy.ModelID,
			Name:             legacy.Name,
			Symbol:           legacy.Symbol,
			Designer:         legacy.Designer,
			Manager:          legacy.Manager,
			Owner:            legacy.Owner,
			AuthorizedSigner: legacy.AuthorizedSigner,
			MintLimit:        legacy.MintLimit,
			MintedCount:      supply,
			BaseURI:          legacy.BaseURI,
			PaymentToken:     legacy.PaymentToken,
		}
		if err := st.KVPut(addrKey(recordPrefix, addr), upgraded); err != nil {
			return err
		}
		if err := st.KVDelete(supplyKey); err != nil {
			return err
		}
	}
	return nil
}
