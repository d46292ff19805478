// Package vectors runs base fee conformance vectors. A vector describes one
// round as a set of labelled messages and the blocks that include them, along
// with the base fee and intermediate values the round must produce.
package vectors

import (
	"bytes"
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/hashicorp/go-multierror"
	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	blockstore "github.com/ipfs/go-ipfs-blockstore"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/filecoin-project/venus-basefee/fixtures/networks"
	"github.com/filecoin-project/venus-basefee/pkg/basefee"
	"github.com/filecoin-project/venus-basefee/pkg/chain"
	"github.com/filecoin-project/venus-basefee/pkg/constants"
	"github.com/filecoin-project/venus-basefee/pkg/crypto"
	"github.com/filecoin-project/venus-basefee/pkg/types"
)

var log = logging.Logger("vectors")

// File is a set of vectors as stored on disk.
type File struct {
	Vectors []Vector `toml:"vector"`
}

// Vector is one round and its expected outcome. Expectations left out of the
// file are not checked.
type Vector struct {
	Name    string `toml:"name"`
	Network string `toml:"network"`
	Epoch   int64  `toml:"epoch"`

	ParentBaseFee   string `toml:"parent_base_fee"`
	ExpectedBaseFee string `toml:"expected_base_fee"`

	UniqueGas    *int64 `toml:"unique_gas"`
	PhysicalGas  *int64 `toml:"physical_gas"`
	EffectiveGas *int64 `toml:"effective_gas"`
	SpaceWeight  *int64 `toml:"space_weight"`

	Messages []MessageDef `toml:"message"`
	Blocks   []BlockDef   `toml:"block"`
}

// MessageDef is a message referenced by label from blocks. Signed messages are
// stored as secp messages, the rest as BLS messages.
type MessageDef struct {
	Label    string `toml:"label"`
	GasLimit int64  `toml:"gas_limit"`
	Signed   bool   `toml:"signed"`
}

// BlockDef lists the labels of the messages a block includes.
type BlockDef struct {
	Messages []string `toml:"messages"`
}

// Load reads and checks a vector file. Unknown keys are rejected so a typo in
// an expectation cannot silently disable it.
func Load(path string) (*File, error) {
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("%s: unknown keys %v", path, undecoded)
	}
	if err := f.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return &f, nil
}

// Validate checks vectors are internally consistent.
func (f *File) Validate() error {
	var result *multierror.Error
	names := make(map[string]struct{}, len(f.Vectors))
	for i := range f.Vectors {
		v := &f.Vectors[i]
		if _, ok := names[v.Name]; ok {
			result = multierror.Append(result, errors.Errorf("duplicate vector name %q", v.Name))
		}
		names[v.Name] = struct{}{}
		if err := v.Validate(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "vector %q", v.Name))
		}
	}
	return result.ErrorOrNil()
}

// Validate checks the vector references only messages it defines.
func (v *Vector) Validate() error {
	if v.Name == "" {
		return errors.New("missing name")
	}
	if len(v.Blocks) == 0 {
		return errors.New("no blocks")
	}
	if _, err := big.FromString(v.ParentBaseFee); err != nil {
		return errors.Wrap(err, "parent_base_fee")
	}
	if v.ExpectedBaseFee != "" {
		if _, err := big.FromString(v.ExpectedBaseFee); err != nil {
			return errors.Wrap(err, "expected_base_fee")
		}
	}

	labels := make(map[string]struct{}, len(v.Messages))
	for _, m := range v.Messages {
		if _, ok := labels[m.Label]; ok {
			return errors.Errorf("duplicate message label %q", m.Label)
		}
		labels[m.Label] = struct{}{}
	}
	for i, b := range v.Blocks {
		for _, l := range b.Messages {
			if _, ok := labels[l]; !ok {
				return errors.Errorf("block %d includes unknown message %q", i, l)
			}
		}
	}
	return nil
}

// Params resolves the base fee parameters of the vector's network.
func (v *Vector) Params() (basefee.Params, error) {
	netcfg, err := networks.GetNetworkConfigFromName(v.Network)
	if err != nil {
		return basefee.Params{}, err
	}
	return netcfg.Network.BaseFeeParams(), nil
}

// Build stores the vector's messages in ms and returns the round as a tipset.
func (v *Vector) Build(ctx context.Context, ms *chain.MessageStore) (*types.TipSet, error) {
	parentBaseFee, err := big.FromString(v.ParentBaseFee)
	if err != nil {
		return nil, errors.Wrap(err, "parent_base_fee")
	}

	key, err := crypto.NewSecpKeyFromSeed(bytes.NewReader(bytes.Repeat([]byte(v.Name+"\x00"), 64)))
	if err != nil {
		return nil, err
	}
	from, err := key.Address()
	if err != nil {
		return nil, err
	}
	to, err := address.NewIDAddress(99)
	if err != nil {
		return nil, err
	}

	type built struct {
		secp *types.SignedMessage
		bls  *types.UnsignedMessage
	}
	msgs := make(map[string]built, len(v.Messages))
	for i, def := range v.Messages {
		msg := types.NewMeteredMessage(from, to, uint64(i), abi.NewTokenAmount(0), abi.MethodNum(0), nil,
			abi.NewTokenAmount(1_000_000_000), abi.NewTokenAmount(1), def.GasLimit)
		if err := msg.ValidForBlockInclusion(constants.BlockGasLimit); err != nil {
			return nil, errors.Wrapf(err, "message %s", def.Label)
		}
		if !def.Signed {
			msgs[def.Label] = built{bls: msg}
			continue
		}
		c, err := msg.Cid()
		if err != nil {
			return nil, err
		}
		sig, err := crypto.Sign(c.Bytes(), key.PrivateKey, key.SigType)
		if err != nil {
			return nil, errors.Wrapf(err, "signing %s", def.Label)
		}
		msgs[def.Label] = built{secp: &types.SignedMessage{Message: *msg, Signature: sig}}
	}

	parent, err := abi.CidBuilder.Sum([]byte(v.Name))
	if err != nil {
		return nil, err
	}
	headers := make([]*types.BlockHeader, len(v.Blocks))
	for i, b := range v.Blocks {
		var secp []*types.SignedMessage
		var bls []*types.UnsignedMessage
		for _, l := range b.Messages {
			if m := msgs[l]; m.secp != nil {
				secp = append(secp, m.secp)
			} else {
				bls = append(bls, m.bls)
			}
		}
		metaCid, err := ms.StoreMessages(ctx, secp, bls)
		if err != nil {
			return nil, errors.Wrapf(err, "storing messages of block %d", i)
		}
		miner, err := address.NewIDAddress(uint64(1000 + i))
		if err != nil {
			return nil, err
		}
		headers[i] = &types.BlockHeader{
			Miner:         miner,
			Parents:       types.NewTipSetKey(parent),
			Height:        abi.ChainEpoch(v.Epoch),
			Messages:      metaCid,
			Timestamp:     uint64(v.Epoch) * 30,
			ParentBaseFee: parentBaseFee,
		}
	}
	return types.NewTipSet(headers...)
}

// Evaluate prices the vector's round under p.
func (v *Vector) Evaluate(ctx context.Context, p *basefee.Params) (*basefee.Result, error) {
	ms := chain.NewMessageStore(blockstore.NewBlockstore(dssync.MutexWrap(ds.NewMapDatastore())))
	ts, err := v.Build(ctx, ms)
	if err != nil {
		return nil, err
	}
	if err := VerifyRound(ctx, ms, ts); err != nil {
		return nil, errors.Wrapf(err, "vector %q", v.Name)
	}
	return chain.ComputeBaseFee(ctx, ms, ts, p)
}

// VerifyRound reads the messages of ts back from ms and checks the signature
// of every secp message against its sender.
func VerifyRound(ctx context.Context, ms *chain.MessageStore, ts *types.TipSet) error {
	infos, err := ms.LoadTipSetMessage(ctx, ts)
	if err != nil {
		return err
	}
	for _, info := range infos {
		for _, m := range info.SecpkMessages {
			smsg, ok := m.(*types.SignedMessage)
			if !ok {
				return errors.Errorf("block %s lists unsigned message in its secp messages", info.Block.Cid())
			}
			c, err := smsg.Message.Cid()
			if err != nil {
				return err
			}
			if err := crypto.ValidateSignature(c.Bytes(), smsg.Message.From, smsg.Signature); err != nil {
				return errors.Wrapf(err, "block %s: message %s", info.Block.Cid(), c)
			}
		}
	}
	return nil
}

// Check compares res with every expectation the vector carries.
func (v *Vector) Check(res *basefee.Result) error {
	var result *multierror.Error
	if v.ExpectedBaseFee != "" && res.NextBaseFee.String() != v.ExpectedBaseFee {
		result = multierror.Append(result, fmt.Errorf("base fee: expected %s, got %s", v.ExpectedBaseFee, res.NextBaseFee))
	}
	checkInt := func(what string, expected *int64, got int64) {
		if expected != nil && *expected != got {
			result = multierror.Append(result, fmt.Errorf("%s: expected %d, got %d", what, *expected, got))
		}
	}
	checkInt("unique gas", v.UniqueGas, res.Totals.Unique)
	checkInt("physical gas", v.PhysicalGas, res.Totals.Physical)
	checkInt("effective gas", v.EffectiveGas, res.EffectiveGas)
	checkInt("space weight", v.SpaceWeight, int64(res.SpaceWeight))
	return result.ErrorOrNil()
}

// Outcome is the result of evaluating and checking one vector.
type Outcome struct {
	Vector *Vector
	Result *basefee.Result
	Err    error
}

// EvaluateAll evaluates every vector of f against its own network, each on
// its own message store, and checks the results.
func EvaluateAll(ctx context.Context, f *File) ([]Outcome, error) {
	outcomes := make([]Outcome, len(f.Vectors))
	g, ctx := errgroup.WithContext(ctx)
	for i := range f.Vectors {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v := &f.Vectors[i]
			o := Outcome{Vector: v}
			p, err := v.Params()
			if err == nil {
				o.Result, err = v.Evaluate(ctx, &p)
			}
			if err == nil {
				err = v.Check(o.Result)
			}
			o.Err = err
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Summarize collects the failures among outcomes.
func Summarize(outcomes []Outcome) error {
	var result *multierror.Error
	for _, o := range outcomes {
		if o.Err != nil {
			result = multierror.Append(result, errors.Wrapf(o.Err, "vector %q", o.Vector.Name))
			continue
		}
		log.Debugw("vector passed", "name", o.Vector.Name, "regime", o.Result.Regime, "nextBaseFee", o.Result.NextBaseFee)
	}
	return result.ErrorOrNil()
}

// Run evaluates every vector of f and reports all mismatches.
func Run(ctx context.Context, f *File) error {
	outcomes, err := EvaluateAll(ctx, f)
	if err != nil {
		return err
	}
	return Summarize(outcomes)
}
