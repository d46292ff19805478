package types

import (
	"github.com/filecoin-project/go-state-types/abi"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-basefee/pkg/encoding"
)

// BlockMessagesInfo contains messages for one block in a tipset.
type BlockMessagesInfo struct { //nolint
	BlsMessages   []ChainMsg
	SecpkMessages []ChainMsg
	Block         *BlockHeader
}

// TxMeta lists the CIDs of the messages a block includes, BLS first. The CID
// of a TxMeta is the block's Messages field.
type TxMeta struct {
	BLSMessages   []cid.Cid
	SecpkMessages []cid.Cid
}

type txMetaWire struct {
	_ struct{} `cbor:",toarray"`

	BLSMessages   [][]byte
	SecpkMessages [][]byte
}

func cidsToBytes(cids []cid.Cid) [][]byte {
	out := make([][]byte, len(cids))
	for i, c := range cids {
		out[i] = c.Bytes()
	}
	return out
}

func cidsFromBytes(raw [][]byte) ([]cid.Cid, error) {
	out := make([]cid.Cid, len(raw))
	for i, b := range raw {
		c, err := cid.Cast(b)
		if err != nil {
			return nil, xerrors.Errorf("decoding cid %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// Marshal the TxMeta into bytes.
func (mm *TxMeta) Marshal() ([]byte, error) {
	return encoding.Encode(&txMetaWire{
		BLSMessages:   cidsToBytes(mm.BLSMessages),
		SecpkMessages: cidsToBytes(mm.SecpkMessages),
	})
}

// DecodeTxMeta decodes raw bytes into a TxMeta.
func DecodeTxMeta(raw []byte) (TxMeta, error) {
	var w txMetaWire
	if err := encoding.Decode(raw, &w); err != nil {
		return TxMeta{}, err
	}
	bls, err := cidsFromBytes(w.BLSMessages)
	if err != nil {
		return TxMeta{}, xerrors.Errorf("bls messages: %w", err)
	}
	secpk, err := cidsFromBytes(w.SecpkMessages)
	if err != nil {
		return TxMeta{}, xerrors.Errorf("secpk messages: %w", err)
	}
	return TxMeta{BLSMessages: bls, SecpkMessages: secpk}, nil
}

func (mm *TxMeta) ToStorageBlock() (blocks.Block, error) {
	data, err := mm.Marshal()
	if err != nil {
		return nil, err
	}

	c, err := abi.CidBuilder.Sum(data)
	if err != nil {
		return nil, err
	}

	return blocks.NewBlockWithCid(data, c)
}

func (mm *TxMeta) Cid() (cid.Cid, error) {
	blk, err := mm.ToStorageBlock()
	if err != nil {
		return cid.Undef, err
	}
	return blk.Cid(), nil
}
