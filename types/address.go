package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// AddressSize is the length, in bytes, of an Address. Addresses derive
// deterministically from a sender's public key (§3 Account invariant),
// and the canonical transaction byte layout (§6) fixes recipientAddress
// at 8 bytes.
const AddressSize = 8

// Address identifies an account. It is derived from a public key and
// never carries the key itself — accounts may learn their public key
// lazily from a first outbound transaction (§3 Account invariant).
type Address [AddressSize]byte

// AddressFromPublicKey derives the address for an Ed25519 public key:
// the low AddressSize bytes of SHA-256(pubkey).
func AddressFromPublicKey(pub []byte) Address {
	sum := sha256.Sum256(pub)
	var addr Address
	copy(addr[:], sum[len(sum)-AddressSize:])
	return addr
}

// AddressFromHex parses a hex-encoded address of exactly AddressSize bytes.
func AddressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, err
	}
	if len(b) != AddressSize {
		return Address{}, errors.New("address: wrong size")
	}
	var addr Address
	copy(addr[:], b)
	return addr, nil
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) String() string { return hex.EncodeToString(a[:]) }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) Equal(other Address) bool {
	return bytes.Equal(a[:], other[:])
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Address) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		*a = Address{}
		return nil
	}
	parsed, err := AddressFromHex(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
