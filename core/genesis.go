package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var genesisKey = []byte("genesis/allocations")

// Allocation credits native funds to an account when a database is opened for
// the first time.
type Allocation struct {
	Address [20]byte
	Amount  *big.Int
}

func allocationsDigest(allocs []Allocation) []byte {
	var buf bytes.Buffer
	for _, alloc := range allocs {
		buf.Write(alloc.Address[:])
		buf.Write(ethcrypto.Keccak256([]byte(alloc.Amount.String())))
	}
	return ethcrypto.Keccak256(buf.Bytes())
}

// applyGenesis credits the configured allocations exactly once per database.
// Later runs with a different allocation set are reported and ignored.
func (n *Node) applyGenesis(ctx context.Context, allocs []Allocation) error {
	if len(allocs) == 0 {
		return nil
	}
	digest := allocationsDigest(allocs)
	var applied bool
	err := n.execute(ctx, moduleBank, "genesis", func(e *engines) error {
		var stored []byte
		ok, err := e.manager.KVGet(genesisKey, &stored)
		if err != nil {
			return err
		}
		if ok {
			if !bytes.Equal(stored, digest) {
				n.logger.Warn("genesis allocations changed after first start; ignoring",
					slog.Int("allocations", len(allocs)))
			}
			return nil
		}
		for _, alloc := range allocs {
			if err := e.bank.Credit(alloc.Address, alloc.Amount); err != nil {
				return fmt.Errorf("core: genesis allocation for %x: %w", alloc.Address, err)
			}
		}
		applied = true
		return e.manager.KVPut(genesisKey, digest)
	})
	if err != nil {
		return err
	}
	if applied {
		n.logger.Info("genesis allocations applied", slog.Int("allocations", len(allocs)))
	}
	return nil
}
