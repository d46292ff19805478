package chain

import (
	"context"

	"github.com/filecoin-project/go-state-types/crypto"
	lru "github.com/hashicorp/golang-lru"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	blockstore "github.com/ipfs/go-ipfs-blockstore"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-basefee/pkg/constants"
	"github.com/filecoin-project/venus-basefee/pkg/types"
)

// MessageProvider is an interface exposing the load methods of the
// MessageStore.
type MessageProvider interface {
	LoadMetaMessages(context.Context, cid.Cid) ([]*types.SignedMessage, []*types.UnsignedMessage, error)
}

// MessageWriter is an interface exposing the write methods of the
// MessageStore.
type MessageWriter interface {
	StoreMessages(ctx context.Context, secpMessages []*types.SignedMessage, blsMessages []*types.UnsignedMessage) (cid.Cid, error)
}

type metaMessages struct {
	secp []*types.SignedMessage
	bls  []*types.UnsignedMessage
}

// MessageStore stores and loads the messages of blocks.
type MessageStore struct {
	bs blockstore.Blockstore

	// decoded messages by TxMeta cid; blocks are immutable so entries never go stale
	metaCache *lru.ARCCache
}

// NewMessageStore creates and returns a new store
func NewMessageStore(bs blockstore.Blockstore) *MessageStore {
	cache, err := lru.NewARC(constants.MessageMetaCacheSize)
	if err != nil {
		// only fails on a non-positive size
		panic(err)
	}
	return &MessageStore{bs: bs, metaCache: cache}
}

// StoreMessage puts a single message in the store and returns its CID.
func (ms *MessageStore) StoreMessage(ctx context.Context, message types.ChainMsg) (cid.Cid, error) {
	blk, err := message.ToStorageBlock()
	if err != nil {
		return cid.Undef, xerrors.Errorf("encoding message: %w", err)
	}
	if err := ms.bs.Put(ctx, blk); err != nil {
		return cid.Undef, xerrors.Errorf("storing message %s: %w", blk.Cid(), err)
	}
	return blk.Cid(), nil
}

// StoreMessages puts the messages of a block in the store and returns the CID
// of their TxMeta, suitable as the block's Messages field.
func (ms *MessageStore) StoreMessages(ctx context.Context, secpMessages []*types.SignedMessage, blsMessages []*types.UnsignedMessage) (cid.Cid, error) {
	var meta types.TxMeta
	for _, m := range blsMessages {
		c, err := ms.StoreMessage(ctx, m)
		if err != nil {
			return cid.Undef, xerrors.Errorf("could not store bls messages: %w", err)
		}
		meta.BLSMessages = append(meta.BLSMessages, c)
	}
	for _, m := range secpMessages {
		c, err := ms.StoreMessage(ctx, m)
		if err != nil {
			return cid.Undef, xerrors.Errorf("could not store secp messages: %w", err)
		}
		meta.SecpkMessages = append(meta.SecpkMessages, c)
	}
	return ms.StoreTxMeta(ctx, meta)
}

// StoreTxMeta writes a TxMeta to the store.
func (ms *MessageStore) StoreTxMeta(ctx context.Context, meta types.TxMeta) (cid.Cid, error) {
	blk, err := meta.ToStorageBlock()
	if err != nil {
		return cid.Undef, xerrors.Errorf("encoding tx meta: %w", err)
	}
	if err := ms.bs.Put(ctx, blk); err != nil {
		return cid.Undef, xerrors.Errorf("storing tx meta: %w", err)
	}
	return blk.Cid(), nil
}

// LoadTxMeta loads a TxMeta from the store.
func (ms *MessageStore) LoadTxMeta(ctx context.Context, c cid.Cid) (types.TxMeta, error) {
	blk, err := ms.getBlock(ctx, c)
	if err != nil {
		return types.TxMeta{}, xerrors.Errorf("failed to load tx meta %s: %w", c, err)
	}
	return types.DecodeTxMeta(blk.RawData())
}

// LoadMetaMessages loads the signed and BLS messages listed by the TxMeta at metaCid.
func (ms *MessageStore) LoadMetaMessages(ctx context.Context, metaCid cid.Cid) ([]*types.SignedMessage, []*types.UnsignedMessage, error) {
	if v, ok := ms.metaCache.Get(metaCid); ok {
		mm := v.(*metaMessages)
		return mm.secp, mm.bls, nil
	}

	meta, err := ms.LoadTxMeta(ctx, metaCid)
	if err != nil {
		return nil, nil, err
	}

	secpMessages, err := ms.LoadSignedMessagesFromCids(ctx, meta.SecpkMessages)
	if err != nil {
		return nil, nil, xerrors.Errorf("loading secp messages: %w", err)
	}
	blsMessages, err := ms.LoadUnsignedMessagesFromCids(ctx, meta.BLSMessages)
	if err != nil {
		return nil, nil, xerrors.Errorf("loading bls messages: %w", err)
	}

	ms.metaCache.Add(metaCid, &metaMessages{secp: secpMessages, bls: blsMessages})
	return secpMessages, blsMessages, nil
}

// LoadUnsignedMessagesFromCids loads BLS messages by CID.
func (ms *MessageStore) LoadUnsignedMessagesFromCids(ctx context.Context, blsCids []cid.Cid) ([]*types.UnsignedMessage, error) {
	blsMsgs := make([]*types.UnsignedMessage, len(blsCids))
	for i, c := range blsCids {
		blk, err := ms.getBlock(ctx, c)
		if err != nil {
			return nil, xerrors.Errorf("failed to get bls message %s: %w", c, err)
		}
		if blsMsgs[i], err = types.DecodeMessage(blk.RawData()); err != nil {
			return nil, xerrors.Errorf("failed to decode bls message %s: %w", c, err)
		}
	}
	return blsMsgs, nil
}

// LoadSignedMessagesFromCids loads secp messages by CID.
func (ms *MessageStore) LoadSignedMessagesFromCids(ctx context.Context, secpCids []cid.Cid) ([]*types.SignedMessage, error) {
	secpMsgs := make([]*types.SignedMessage, len(secpCids))
	for i, c := range secpCids {
		blk, err := ms.getBlock(ctx, c)
		if err != nil {
			return nil, xerrors.Errorf("failed to get secp message %s: %w", c, err)
		}
		if secpMsgs[i], err = types.DecodeSignedMessage(blk.RawData()); err != nil {
			return nil, xerrors.Errorf("failed to decode secp message %s: %w", c, err)
		}
		if secpMsgs[i].Signature.Type == crypto.SigTypeBLS {
			return nil, xerrors.Errorf("secp message %s carries a bls signature", c)
		}
	}
	return secpMsgs, nil
}

// LoadTipSetMessage returns the messages of every block in ts, in block order.
func (ms *MessageStore) LoadTipSetMessage(ctx context.Context, ts *types.TipSet) ([]types.BlockMessagesInfo, error) {
	out := make([]types.BlockMessagesInfo, 0, ts.Len())
	for _, b := range ts.Blocks() {
		secpMsgs, blsMsgs, err := ms.LoadMetaMessages(ctx, b.Messages)
		if err != nil {
			return nil, xerrors.Errorf("error getting messages for: %s: %w", b.Cid(), err)
		}

		info := types.BlockMessagesInfo{Block: b}
		for _, m := range blsMsgs {
			info.BlsMessages = append(info.BlsMessages, m)
		}
		for _, m := range secpMsgs {
			info.SecpkMessages = append(info.SecpkMessages, m)
		}
		out = append(out, info)
	}
	return out, nil
}

func (ms *MessageStore) getBlock(ctx context.Context, c cid.Cid) (blocks.Block, error) {
	return ms.bs.Get(ctx, c)
}
