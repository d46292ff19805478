package crypto

import (
	"bytes"
	"fmt"

	"github.com/filecoin-project/go-address"
	gocrypto "github.com/filecoin-project/go-crypto"
)

// KeyInfo is a key and its type used for signing.
type KeyInfo struct {
	// Private key.
	PrivateKey []byte `json:"privateKey"`
	// Cryptographic system used to generate private key.
	SigType SigType `json:"type"`
}

// Equals returns true if the KeyInfo is equal to other.
func (ki *KeyInfo) Equals(other *KeyInfo) bool {
	if ki == nil && other == nil {
		return true
	}
	if ki == nil || other == nil {
		return false
	}
	return ki.SigType == other.SigType && bytes.Equal(ki.PrivateKey, other.PrivateKey)
}

// PublicKey returns the public key part as a byte slice.
func (ki *KeyInfo) PublicKey() ([]byte, error) {
	if ki.SigType != SigTypeSecp256k1 {
		return nil, fmt.Errorf("unsupported sig type %d", ki.SigType)
	}
	return gocrypto.PublicKey(ki.PrivateKey), nil
}

// Address returns the address for this keyinfo
func (ki *KeyInfo) Address() (address.Address, error) {
	pub, err := ki.PublicKey()
	if err != nil {
		return address.Undef, err
	}
	return address.NewSecp256k1Address(pub)
}
