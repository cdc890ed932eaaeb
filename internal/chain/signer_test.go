package chain

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"golang.org/x/crypto/blake2b"
)

// Seed 0x00..0x1f, base64. Address derived independently from the Sui
// address rules (blake2b-256 over flag || pubkey).
const (
	testSeedB64 = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="
	testAddress = "0x160179a1565ea7cff27ead23f54cc7f50893bf58155cd7285156e57afa31c3ac"
)

func TestEd25519SignerAddress(t *testing.T) {
	signer, err := NewEd25519Signer(testSeedB64)
	if err != nil {
		t.Fatalf("NewEd25519Signer: %v", err)
	}
	if signer.Address() != testAddress {
		t.Fatalf("address: want %s, got %s", testAddress, signer.Address())
	}
}

func TestEd25519SignerAcceptsFlaggedSeed(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(testSeedB64)
	if err != nil {
		t.Fatalf("decode seed: %v", err)
	}
	flagged := base64.StdEncoding.EncodeToString(append([]byte{ed25519Flag}, raw...))

	signer, err := NewEd25519Signer(flagged)
	if err != nil {
		t.Fatalf("NewEd25519Signer: %v", err)
	}
	if signer.Address() != testAddress {
		t.Fatalf("address: want %s, got %s", testAddress, signer.Address())
	}
}

func TestEd25519SignerRejectsBadSeeds(t *testing.T) {
	if _, err := NewEd25519Signer("not base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})
	if _, err := NewEd25519Signer(short); err == nil {
		t.Fatal("expected error for short seed")
	}
}

func TestSignTransactionBlockEnvelope(t *testing.T) {
	signer, err := NewEd25519Signer(testSeedB64)
	if err != nil {
		t.Fatalf("NewEd25519Signer: %v", err)
	}

	txBytes := []byte("serialized transaction data")
	encoded, err := signer.SignTransactionBlock(txBytes)
	if err != nil {
		t.Fatalf("SignTransactionBlock: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("signature is not base64: %v", err)
	}
	if len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize {
		t.Fatalf("signature envelope length: got %d", len(raw))
	}
	if raw[0] != ed25519Flag {
		t.Fatalf("scheme flag: got %#x", raw[0])
	}

	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])

	// The signed message is the intent-prefixed blake2b digest.
	h, err := blake2b.New256(nil)
	if err != nil {
		t.Fatalf("blake2b: %v", err)
	}
	h.Write([]byte{0, 0, 0})
	h.Write(txBytes)
	if !ed25519.Verify(pub, h.Sum(nil), sig) {
		t.Fatal("signature does not verify over the intent digest")
	}

	// Signing must not cover the raw bytes without the intent prefix.
	if ed25519.Verify(pub, txBytes, sig) {
		t.Fatal("signature unexpectedly verifies over raw tx bytes")
	}
}
