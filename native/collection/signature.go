package collection

import (
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/nfidao/nfi-smart-contract/crypto"
)

// Verifier checks that signature over digest was produced by expected.
type Verifier interface {
	Verify(digest []byte, signature []byte, expected [20]byte) bool
}

// PersonalSignVerifier accepts secp256k1 signatures over the EIP-191 personal
// message hash of the digest, the format wallets produce for signMessage.
type PersonalSignVerifier struct{}

// Verify implements Verifier.
func (PersonalSignVerifier) Verify(digest []byte, signature []byte, expected [20]byte) bool {
	if expected == ([20]byte{}) || len(digest) != common.HashLength {
		return false
	}
	signer, err := crypto.RecoverPersonal(digest, signature)
	if err != nil {
		return false
	}
	return signer == expected
}

// MintDigest computes the authorization digest a signer approves:
// keccak256(caller ‖ firstURI ‖ uint256(formulaType) ‖ uint256(totalCount) ‖ collection)
// with tight packing.
func MintDigest(caller [20]byte, firstURI string, formulaType, totalCount uint64, collection [20]byte) []byte {
	formula := uint256.NewInt(formulaType).Bytes32()
	count := uint256.NewInt(totalCount).Bytes32()
	return ethcrypto.Keccak256(
		caller[:],
		[]byte(firstURI),
		formula[:],
		count[:],
		collection[:],
	)
}

// SignMint produces a signature over the mint digest for the given request.
func SignMint(key *crypto.PrivateKey, caller, collection [20]byte, req MintRequest) ([]byte, error) {
	first := ""
	if len(req.URIs) > 0 {
		first = req.URIs[0]
	}
	return crypto.SignPersonal(key, MintDigest(caller, first, req.FormulaType, req.TotalCount, collection))
}

func signatureKey(signature []byte) [32]byte {
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(signature))
	return out
}
