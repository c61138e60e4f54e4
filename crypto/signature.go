package crypto

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of a recoverable secp256k1 signature (r, s, v).
const SignatureLength = crypto.SignatureLength

// ErrInvalidSignature is returned when a signature is malformed or cannot be
// recovered.
var ErrInvalidSignature = errors.New("crypto: invalid signature")

// PersonalHash returns the EIP-191 "personal message" hash of data:
// keccak256("\x19Ethereum Signed Message:\n" + len(data) + data).
func PersonalHash(data []byte) []byte {
	return accounts.TextHash(data)
}

// SignPersonal signs the EIP-191 personal hash of data. The returned signature
// carries v in {27, 28}, matching what wallets produce.
func SignPersonal(key *PrivateKey, data []byte) ([]byte, error) {
	if key == nil || key.PrivateKey == nil {
		return nil, errors.New("crypto: nil private key")
	}
	sig, err := crypto.Sign(PersonalHash(data), key.PrivateKey)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// RecoverPersonal recovers the address that produced sig over the EIP-191
// personal hash of data. Both v encodings {0, 1} and {27, 28} are accepted.
func RecoverPersonal(data []byte, sig []byte) ([20]byte, error) {
	if len(sig) != SignatureLength {
		return [20]byte{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureLength, len(sig))
	}
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	if normalized[64] > 1 {
		return [20]byte{}, fmt.Errorf("%w: bad recovery id", ErrInvalidSignature)
	}
	pub, err := crypto.SigToPub(PersonalHash(data), normalized)
	if err != nil {
		return [20]byte{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
