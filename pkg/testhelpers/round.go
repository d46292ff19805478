package testhelpers

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/venus-basefee/pkg/types"
)

// MessageWriter stores the messages of a block and returns its TxMeta cid.
type MessageWriter interface {
	StoreMessages(ctx context.Context, secpMessages []*types.SignedMessage, blsMessages []*types.UnsignedMessage) (cid.Cid, error)
}

// RequireIDAddress returns the ID address i.
func RequireIDAddress(t *testing.T, i int) address.Address {
	a, err := address.NewIDAddress(uint64(i))
	if err != nil {
		t.Fatalf("failed to make address: %v", err)
	}
	return a
}

// RoundBuilder assembles the blocks of one round, storing their messages as it
// goes. Every message it creates is distinct; share a message between blocks
// by passing the same value to AddBlock more than once.
type RoundBuilder struct {
	t      *testing.T
	store  MessageWriter
	signer MockSigner

	parents       types.TipSetKey
	height        abi.ChainEpoch
	parentBaseFee abi.TokenAmount

	blocks []*types.BlockHeader
	nonce  uint64
}

// NewRoundBuilder starts a round at height produced under parentBaseFee.
func NewRoundBuilder(t *testing.T, store MessageWriter, height abi.ChainEpoch, parentBaseFee abi.TokenAmount) *RoundBuilder {
	parent, err := abi.CidBuilder.Sum([]byte("genesis"))
	require.NoError(t, err)

	signer, _ := NewMockSignersAndKeyInfo(1)
	return &RoundBuilder{
		t:             t,
		store:         store,
		signer:        signer,
		parents:       types.NewTipSetKey(parent),
		height:        height,
		parentBaseFee: parentBaseFee,
	}
}

// NewMessage returns a fresh unsigned message from the builder's signer.
func (rb *RoundBuilder) NewMessage(gasLimit int64) *types.UnsignedMessage {
	nonce := rb.nonce
	rb.nonce++
	return types.NewMeteredMessage(rb.signer.Addresses[0], RequireIDAddress(rb.t, 99), nonce, abi.NewTokenAmount(1),
		abi.MethodNum(0), nil, abi.NewTokenAmount(1000), abi.NewTokenAmount(1), gasLimit)
}

// NewSignedMessage returns a fresh secp signed message.
func (rb *RoundBuilder) NewSignedMessage(gasLimit int64) *types.SignedMessage {
	smsg, err := types.NewSignedMessage(context.Background(), *rb.NewMessage(gasLimit), rb.signer)
	require.NoError(rb.t, err)
	return smsg
}

// AddBlock stores the given messages and appends a block including them.
func (rb *RoundBuilder) AddBlock(secp []*types.SignedMessage, bls []*types.UnsignedMessage) *types.BlockHeader {
	metaCid, err := rb.store.StoreMessages(context.Background(), secp, bls)
	require.NoError(rb.t, err)

	blk := &types.BlockHeader{
		Miner:         RequireIDAddress(rb.t, 1000+len(rb.blocks)),
		Parents:       rb.parents,
		Height:        rb.height,
		Messages:      metaCid,
		Timestamp:     uint64(rb.height) * 30,
		ParentBaseFee: rb.parentBaseFee,
	}
	rb.blocks = append(rb.blocks, blk)
	return blk
}

// TipSet groups the blocks added so far.
func (rb *RoundBuilder) TipSet() *types.TipSet {
	ts, err := types.NewTipSet(rb.blocks...)
	require.NoError(rb.t, err)
	return ts
}
