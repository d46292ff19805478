package crypto_test

import (
	"bytes"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/venus-basefee/pkg/crypto"
	tf "github.com/filecoin-project/venus-basefee/pkg/testhelpers/testflags"
)

func TestSecpSignAndValidate(t *testing.T) {
	tf.UnitTest(t)

	ki, err := crypto.NewSecpKeyFromSeed(bytes.NewReader(bytes.Repeat([]byte{7}, 512)))
	require.NoError(t, err)
	addr, err := ki.Address()
	require.NoError(t, err)
	assert.Equal(t, address.SECP256K1, addr.Protocol())

	data := []byte("round messages")
	sig, err := crypto.Sign(data, ki.PrivateKey, crypto.SigTypeSecp256k1)
	require.NoError(t, err)
	assert.NoError(t, crypto.ValidateSignature(data, addr, sig))
	assert.Error(t, crypto.ValidateSignature([]byte("other data"), addr, sig))

	other, err := crypto.NewSecpKeyFromSeed(bytes.NewReader(bytes.Repeat([]byte{8}, 512)))
	require.NoError(t, err)
	otherAddr, err := other.Address()
	require.NoError(t, err)
	assert.Error(t, crypto.ValidateSignature(data, otherAddr, sig))

	idAddr, err := address.NewIDAddress(1)
	require.NoError(t, err)
	assert.Error(t, crypto.ValidateSignature(data, idAddr, sig))
}

func TestKeysFromSameSeedMatch(t *testing.T) {
	tf.UnitTest(t)

	seed := bytes.Repeat([]byte{3}, 512)
	a, err := crypto.NewSecpKeyFromSeed(bytes.NewReader(seed))
	require.NoError(t, err)
	b, err := crypto.NewSecpKeyFromSeed(bytes.NewReader(seed))
	require.NoError(t, err)
	assert.True(t, a.Equals(&b))

	_, err = crypto.Sign([]byte("x"), a.PrivateKey, crypto.SigTypeBLS)
	assert.Error(t, err)
}
