package types

import (
	"bytes"
	"sort"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"
)

// TipSet is a non-empty, immutable set of blocks at the same height with the
// same parents and parent base fee. Blocks are held in CID order.
type TipSet struct {
	blocks []*BlockHeader
	cids   []cid.Cid
	key    TipSetKey
	height abi.ChainEpoch
}

type blockHeaderWithCid struct {
	c cid.Cid
	b *BlockHeader
}

// NewTipSet groups blocks into a tipset, rejecting blocks that could not
// have been produced in the same round.
func NewTipSet(bhs ...*BlockHeader) (*TipSet, error) {
	if len(bhs) == 0 {
		return nil, xerrors.New("no blocks for tipset")
	}

	first := bhs[0]
	if first.ParentBaseFee.Nil() {
		return nil, xerrors.Errorf("block %s has no parent base fee", first.Cid())
	}

	blks := make([]*blockHeaderWithCid, len(bhs))
	seen := make(map[cid.Cid]struct{}, len(bhs))
	for i, blk := range bhs {
		if blk.Height != first.Height {
			return nil, xerrors.Errorf("inconsistent block heights %d and %d", first.Height, blk.Height)
		}
		if !blk.Parents.Equals(first.Parents) {
			return nil, xerrors.Errorf("inconsistent block parents %s and %s", first.Parents, blk.Parents)
		}
		if blk.ParentBaseFee.Nil() || !blk.ParentBaseFee.Equals(first.ParentBaseFee) {
			return nil, xerrors.Errorf("inconsistent parent base fees %v and %v", first.ParentBaseFee, blk.ParentBaseFee)
		}

		bcid := blk.Cid()
		if _, ok := seen[bcid]; ok {
			return nil, xerrors.Errorf("duplicate block %s", bcid)
		}
		seen[bcid] = struct{}{}
		blks[i] = &blockHeaderWithCid{c: bcid, b: blk}
	}

	sort.Slice(blks, func(i, j int) bool {
		return bytes.Compare(blks[i].c.Bytes(), blks[j].c.Bytes()) < 0
	})

	ts := &TipSet{
		blocks: make([]*BlockHeader, len(blks)),
		cids:   make([]cid.Cid, len(blks)),
		height: first.Height,
	}
	for i := range blks {
		ts.blocks[i] = blks[i].b
		ts.cids[i] = blks[i].c
	}
	ts.key = NewTipSetKey(ts.cids...)
	return ts, nil
}

// Defined checks whether the tipset is defined.
func (ts *TipSet) Defined() bool {
	return ts != nil && len(ts.blocks) > 0
}

// Len returns the number of blocks in the tipset.
func (ts *TipSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.blocks)
}

func (ts *TipSet) Blocks() []*BlockHeader {
	return ts.blocks
}

// At returns the i'th block, in CID order.
func (ts *TipSet) At(i int) *BlockHeader {
	return ts.blocks[i]
}

func (ts *TipSet) Cids() []cid.Cid {
	return ts.cids
}

func (ts *TipSet) Key() TipSetKey {
	return ts.key
}

func (ts *TipSet) Height() abi.ChainEpoch {
	return ts.height
}

func (ts *TipSet) Parents() TipSetKey {
	return ts.blocks[0].Parents
}

// ParentBaseFee is the base fee every block of the tipset was produced under.
func (ts *TipSet) ParentBaseFee() abi.TokenAmount {
	return ts.blocks[0].ParentBaseFee
}

func (ts *TipSet) String() string {
	return ts.key.String()
}
