package crypto

import (
	"io"

	gocrypto "github.com/filecoin-project/go-crypto"
)

//
// Abstract SECP crypto operations.
//

// NewSecpKeyFromSeed generates a new key from the given reader.
func NewSecpKeyFromSeed(seed io.Reader) (KeyInfo, error) {
	k, err := gocrypto.GenerateKeyFromSeed(seed)
	if err != nil {
		return KeyInfo{}, err
	}
	return KeyInfo{SigType: SigTypeSecp256k1, PrivateKey: k}, nil
}

// SignSecp signs a 32 byte digest with a secp256k1 private key.
func SignSecp(sk, msg []byte) ([]byte, error) {
	return gocrypto.Sign(sk, msg)
}

// EcRecover recovers the public key of the signer of a 32 byte digest.
func EcRecover(msg, signature []byte) ([]byte, error) {
	return gocrypto.EcRecover(msg, signature)
}
