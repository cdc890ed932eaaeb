package chain

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Signer authorizes transactions. The rest of the system only ever sees the
// derived address and serialized signatures; key material stays in here.
type Signer interface {
	Address() string
	SignTransactionBlock(txBytes []byte) (string, error)
}

// ed25519Flag is the Sui signature scheme tag for ed25519 keys.
const ed25519Flag = 0x00

// transactionDataIntent is the signing domain prefix for transaction data:
// intent scope, version and app id, all zero.
var transactionDataIntent = []byte{0, 0, 0}

// Ed25519Signer signs with a raw ed25519 seed, the scheme Sui wallets export
// by default.
type Ed25519Signer struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address string
}

// NewEd25519Signer parses a base64 seed. Wallet exports that carry a leading
// scheme flag byte are accepted too.
func NewEd25519Signer(encodedSeed string) (*Ed25519Signer, error) {
	seed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encodedSeed))
	if err != nil {
		return nil, fmt.Errorf("decode signer key: %w", err)
	}
	if len(seed) == ed25519.SeedSize+1 && seed[0] == ed25519Flag {
		seed = seed[1:]
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signer key must be a %d-byte ed25519 seed, got %d bytes", ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	// The account address is blake2b-256 over flag || pubkey.
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	h.Write([]byte{ed25519Flag})
	h.Write(pub)

	return &Ed25519Signer{
		priv:    priv,
		pub:     pub,
		address: "0x" + hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// Address returns the Sui account address derived from the public key.
func (s *Ed25519Signer) Address() string {
	return s.address
}

// SignTransactionBlock signs blake2b-256(intent || txBytes) and serializes
// the result as base64(flag || signature || pubkey), the envelope
// sui_executeTransactionBlock expects.
func (s *Ed25519Signer) SignTransactionBlock(txBytes []byte) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	h.Write(transactionDataIntent)
	h.Write(txBytes)
	sig := ed25519.Sign(s.priv, h.Sum(nil))

	out := make([]byte, 0, 1+len(sig)+ed25519.PublicKeySize)
	out = append(out, ed25519Flag)
	out = append(out, sig...)
	out = append(out, s.pub...)
	return base64.StdEncoding.EncodeToString(out), nil
}
