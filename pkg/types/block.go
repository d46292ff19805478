package types

import (
	"encoding/json"
	"fmt"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-basefee/pkg/encoding"
)

// BlockHeader is the part of a block the base fee computation reads.
type BlockHeader struct {
	// Miner is the address of the miner actor that mined this block.
	Miner address.Address `json:"miner"`

	// Parents is the set of parents this block was based on.
	Parents TipSetKey `json:"parents"`

	// Height is the chain height of this block.
	Height abi.ChainEpoch `json:"height"`

	// Messages is the CID of the TxMeta listing the messages included in this block.
	Messages cid.Cid `json:"messages"`

	// The timestamp, in seconds since the Unix epoch, at which this block was created.
	Timestamp uint64 `json:"timestamp"`

	// identical for all blocks in same tipset: the base fee after executing parent tipset
	ParentBaseFee abi.TokenAmount `json:"parentBaseFee"`
}

type blockHeaderWire struct {
	_ struct{} `cbor:",toarray"`

	Miner         []byte
	Parents       []byte
	Height        int64
	Messages      []byte
	Timestamp     uint64
	ParentBaseFee []byte
}

// Serialize returns the canonical encoding of the header.
func (b *BlockHeader) Serialize() ([]byte, error) {
	fee, err := amountBytes(b.ParentBaseFee)
	if err != nil {
		return nil, xerrors.Errorf("encoding parent base fee: %w", err)
	}
	var msgs []byte
	if b.Messages.Defined() {
		msgs = b.Messages.Bytes()
	}
	return encoding.Encode(&blockHeaderWire{
		Miner:         b.Miner.Bytes(),
		Parents:       b.Parents.Bytes(),
		Height:        int64(b.Height),
		Messages:      msgs,
		Timestamp:     b.Timestamp,
		ParentBaseFee: fee,
	})
}

// DecodeBlock decodes raw cbor bytes into a BlockHeader.
func DecodeBlock(raw []byte) (*BlockHeader, error) {
	var w blockHeaderWire
	if err := encoding.Decode(raw, &w); err != nil {
		return nil, err
	}

	var (
		out BlockHeader
		err error
	)
	if out.Miner, err = addressFromBytes(w.Miner); err != nil {
		return nil, xerrors.Errorf("decoding miner: %w", err)
	}
	if out.Parents, err = TipSetKeyFromBytes(w.Parents); err != nil {
		return nil, xerrors.Errorf("decoding parents: %w", err)
	}
	out.Height = abi.ChainEpoch(w.Height)
	if len(w.Messages) > 0 {
		if out.Messages, err = cid.Cast(w.Messages); err != nil {
			return nil, xerrors.Errorf("decoding messages root: %w", err)
		}
	}
	out.Timestamp = w.Timestamp
	if out.ParentBaseFee, err = big.FromBytes(w.ParentBaseFee); err != nil {
		return nil, xerrors.Errorf("decoding parent base fee: %w", err)
	}
	return &out, nil
}

// Cid returns the content id of this block.
func (b *BlockHeader) Cid() cid.Cid {
	data, err := b.Serialize()
	if err != nil {
		panic(err)
	}
	c, err := abi.CidBuilder.Sum(data)
	if err != nil {
		panic(err)
	}
	return c
}

func (b *BlockHeader) ToStorageBlock() (blocks.Block, error) {
	data, err := b.Serialize()
	if err != nil {
		return nil, err
	}

	c, err := abi.CidBuilder.Sum(data)
	if err != nil {
		return nil, err
	}

	return blocks.NewBlockWithCid(data, c)
}

func (b *BlockHeader) String() string {
	errStr := "(error encoding BlockHeader)"
	c := b.Cid()
	js, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return errStr
	}
	return fmt.Sprintf("BlockHeader cid=[%v]: %s", c, string(js))
}
