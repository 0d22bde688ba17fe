package model

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash is a 32-byte content address. Entity ids (members, objects,
// contracts, lots) and transaction hashes all use this form.
type Hash [sha256.Size]byte

// NewHash hashes raw bytes into a content address.
func NewHash(data []byte) Hash {
	return sha256.Sum256(data)
}

// HashFromHex decodes a 64-character hex string.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != sha256.Size {
		return h, ErrBadParam("hash")
	}
	copy(h[:], raw)
	return h, nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := HashFromHex(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// PublicKey is a member node's ed25519 public key, the unit of the
// private-payload recipient list.
type PublicKey [ed25519.PublicKeySize]byte

// PublicKeyFromHex decodes a stored node key. Callers treat a failure on
// a key read back from the ledger as corruption, not user error.
func PublicKeyFromHex(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != ed25519.PublicKeySize {
		return pk, ErrBadParam("public key")
	}
	copy(pk[:], raw)
	return pk, nil
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// Verify checks a detached ed25519 signature over data.
func (pk PublicKey) Verify(data, signature []byte) bool {
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk[:]), data, signature)
}

func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(pk.String())
}

func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := PublicKeyFromHex(s)
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}
