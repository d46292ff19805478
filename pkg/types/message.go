package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	errPkg "github.com/pkg/errors"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-basefee/pkg/encoding"
)

const MessageVersion = 0

// ChainMsg is a message as included in a block: a bare BLS message or a secp
// signed message. Its CID identifies it across all blocks of a tipset.
type ChainMsg interface {
	Cid() (cid.Cid, error)
	VMMessage() *UnsignedMessage
	ToStorageBlock() (blocks.Block, error)
}

var _ ChainMsg = &UnsignedMessage{}

// UnsignedMessage is an exchange of information between two actors modeled
// as a function call.
type UnsignedMessage struct {
	Version int64 `json:"version"`

	To   address.Address `json:"to"`
	From address.Address `json:"from"`
	// When receiving a message from a user account the nonce in
	// the message must match the expected nonce in the from actor.
	// This prevents replay attacks.
	Nonce uint64 `json:"nonce"`

	Value abi.TokenAmount `json:"value"`

	GasLimit   int64           `json:"gasLimit"`
	GasFeeCap  abi.TokenAmount `json:"gasFeeCap"`
	GasPremium abi.TokenAmount `json:"gasPremium"`

	Method abi.MethodNum `json:"method"`
	Params []byte        `json:"params"`
}

type messageWire struct {
	_ struct{} `cbor:",toarray"`

	Version    int64
	To         []byte
	From       []byte
	Nonce      uint64
	Value      []byte
	GasLimit   int64
	GasFeeCap  []byte
	GasPremium []byte
	Method     uint64
	Params     []byte
}

// NewMeteredMessage creates a message carrying gas parameters.
func NewMeteredMessage(from, to address.Address, nonce uint64, value abi.TokenAmount, method abi.MethodNum, params []byte, gasFeeCap, gasPremium abi.TokenAmount, limit int64) *UnsignedMessage {
	return &UnsignedMessage{
		Version:    MessageVersion,
		To:         to,
		From:       from,
		Nonce:      nonce,
		Value:      value,
		GasFeeCap:  gasFeeCap,
		GasPremium: gasPremium,
		GasLimit:   limit,
		Method:     method,
		Params:     params,
	}
}

func (msg *UnsignedMessage) toWire() (*messageWire, error) {
	value, err := amountBytes(msg.Value)
	if err != nil {
		return nil, xerrors.Errorf("encoding value: %w", err)
	}
	feeCap, err := amountBytes(msg.GasFeeCap)
	if err != nil {
		return nil, xerrors.Errorf("encoding gas fee cap: %w", err)
	}
	premium, err := amountBytes(msg.GasPremium)
	if err != nil {
		return nil, xerrors.Errorf("encoding gas premium: %w", err)
	}
	return &messageWire{
		Version:    msg.Version,
		To:         msg.To.Bytes(),
		From:       msg.From.Bytes(),
		Nonce:      msg.Nonce,
		Value:      value,
		GasLimit:   msg.GasLimit,
		GasFeeCap:  feeCap,
		GasPremium: premium,
		Method:     uint64(msg.Method),
		Params:     msg.Params,
	}, nil
}

func (w *messageWire) toMessage() (*UnsignedMessage, error) {
	var (
		msg UnsignedMessage
		err error
	)
	msg.Version = w.Version
	if msg.To, err = addressFromBytes(w.To); err != nil {
		return nil, xerrors.Errorf("decoding to: %w", err)
	}
	if msg.From, err = addressFromBytes(w.From); err != nil {
		return nil, xerrors.Errorf("decoding from: %w", err)
	}
	msg.Nonce = w.Nonce
	if msg.Value, err = big.FromBytes(w.Value); err != nil {
		return nil, xerrors.Errorf("decoding value: %w", err)
	}
	msg.GasLimit = w.GasLimit
	if msg.GasFeeCap, err = big.FromBytes(w.GasFeeCap); err != nil {
		return nil, xerrors.Errorf("decoding gas fee cap: %w", err)
	}
	if msg.GasPremium, err = big.FromBytes(w.GasPremium); err != nil {
		return nil, xerrors.Errorf("decoding gas premium: %w", err)
	}
	msg.Method = abi.MethodNum(w.Method)
	msg.Params = w.Params
	return &msg, nil
}

// Marshal the message into bytes.
func (msg *UnsignedMessage) Marshal() ([]byte, error) {
	w, err := msg.toWire()
	if err != nil {
		return nil, err
	}
	return encoding.Encode(w)
}

// Unmarshal a message from the given bytes.
func (msg *UnsignedMessage) Unmarshal(b []byte) error {
	var w messageWire
	if err := encoding.Decode(b, &w); err != nil {
		return err
	}
	out, err := w.toMessage()
	if err != nil {
		return err
	}
	*msg = *out
	return nil
}

// DecodeMessage decodes raw bytes into an UnsignedMessage.
func DecodeMessage(b []byte) (*UnsignedMessage, error) {
	var msg UnsignedMessage
	if err := msg.Unmarshal(b); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Cid returns the canonical CID for the message.
func (msg *UnsignedMessage) Cid() (cid.Cid, error) {
	data, err := msg.Marshal()
	if err != nil {
		return cid.Undef, errPkg.Wrap(err, "failed to marshal to cbor")
	}
	return abi.CidBuilder.Sum(data)
}

func (msg *UnsignedMessage) ToStorageBlock() (blocks.Block, error) {
	data, err := msg.Marshal()
	if err != nil {
		return nil, err
	}

	c, err := abi.CidBuilder.Sum(data)
	if err != nil {
		return nil, err
	}

	return blocks.NewBlockWithCid(data, c)
}

func (msg *UnsignedMessage) VMMessage() *UnsignedMessage {
	return msg
}

func (msg *UnsignedMessage) String() string {
	errStr := "(error encoding Message)"
	cid, err := msg.Cid()
	if err != nil {
		return errStr
	}
	js, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return errStr
	}
	return fmt.Sprintf("Message cid=[%v]: %s", cid, string(js))
}

// Equals tests whether two messages are equal
func (msg *UnsignedMessage) Equals(other *UnsignedMessage) bool {
	return msg.Version == other.Version &&
		msg.To == other.To &&
		msg.From == other.From &&
		msg.Nonce == other.Nonce &&
		amountEquals(msg.Value, other.Value) &&
		amountEquals(msg.GasPremium, other.GasPremium) &&
		amountEquals(msg.GasFeeCap, other.GasFeeCap) &&
		msg.GasLimit == other.GasLimit &&
		msg.Method == other.Method &&
		bytes.Equal(msg.Params, other.Params)
}

// ValidForBlockInclusion checks the fields the base fee computation relies on.
func (msg *UnsignedMessage) ValidForBlockInclusion(blockGasLimit int64) error {
	if msg.Version != MessageVersion {
		return xerrors.Errorf("'Version' unsupported: %d", msg.Version)
	}
	if msg.GasLimit < 0 {
		return xerrors.Errorf("'GasLimit' field cannot be negative: %d", msg.GasLimit)
	}
	if msg.GasLimit > blockGasLimit {
		return xerrors.Errorf("'GasLimit' field cannot be greater than a block's gas limit: %d > %d", msg.GasLimit, blockGasLimit)
	}
	return nil
}

func amountBytes(v abi.TokenAmount) ([]byte, error) {
	if v.Nil() {
		v = big.Zero()
	}
	return v.Bytes()
}

func amountEquals(a, b abi.TokenAmount) bool {
	if a.Nil() || b.Nil() {
		return a.Nil() == b.Nil()
	}
	return a.Equals(b)
}

func addressFromBytes(b []byte) (address.Address, error) {
	if len(b) == 0 {
		return address.Undef, nil
	}
	return address.NewFromBytes(b)
}
