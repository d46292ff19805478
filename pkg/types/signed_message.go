package types

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/crypto"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-basefee/pkg/encoding"
)

// SignedMessage contains a message and its signature
type SignedMessage struct {
	Message   UnsignedMessage  `json:"message"`
	Signature crypto.Signature `json:"signature"`
}

type signedMessageWire struct {
	_ struct{} `cbor:",toarray"`

	Message   []byte
	SigType   uint8
	Signature []byte
}

// NewSignedMessage signs the CID of msg with the key behind msg.From.
func NewSignedMessage(ctx context.Context, msg UnsignedMessage, s Signer) (*SignedMessage, error) {
	msgCid, err := msg.Cid()
	if err != nil {
		return nil, err
	}

	sig, err := s.SignBytes(ctx, msgCid.Bytes(), msg.From)
	if err != nil {
		return nil, err
	}

	return &SignedMessage{
		Message:   msg,
		Signature: *sig,
	}, nil
}

// Marshal the signed message into bytes.
func (smsg *SignedMessage) Marshal() ([]byte, error) {
	raw, err := smsg.Message.Marshal()
	if err != nil {
		return nil, err
	}
	return encoding.Encode(&signedMessageWire{
		Message:   raw,
		SigType:   uint8(smsg.Signature.Type),
		Signature: smsg.Signature.Data,
	})
}

// DecodeSignedMessage decodes raw bytes into a SignedMessage.
func DecodeSignedMessage(b []byte) (*SignedMessage, error) {
	var w signedMessageWire
	if err := encoding.Decode(b, &w); err != nil {
		return nil, err
	}
	msg, err := DecodeMessage(w.Message)
	if err != nil {
		return nil, xerrors.Errorf("decoding inner message: %w", err)
	}
	return &SignedMessage{
		Message:   *msg,
		Signature: crypto.Signature{Type: crypto.SigType(w.SigType), Data: w.Signature},
	}, nil
}

// Cid returns the canonical CID for the SignedMessage. A BLS signed message is
// identified by its inner message since BLS signatures are aggregated per block.
func (smsg *SignedMessage) Cid() (cid.Cid, error) {
	if smsg.Signature.Type == crypto.SigTypeBLS {
		return smsg.Message.Cid()
	}

	data, err := smsg.Marshal()
	if err != nil {
		return cid.Undef, errors.Wrap(err, "failed to marshal to cbor")
	}
	return abi.CidBuilder.Sum(data)
}

func (smsg *SignedMessage) ToStorageBlock() (blocks.Block, error) {
	if smsg.Signature.Type == crypto.SigTypeBLS {
		return smsg.Message.ToStorageBlock()
	}

	data, err := smsg.Marshal()
	if err != nil {
		return nil, err
	}

	c, err := abi.CidBuilder.Sum(data)
	if err != nil {
		return nil, err
	}

	return blocks.NewBlockWithCid(data, c)
}

func (smsg *SignedMessage) VMMessage() *UnsignedMessage {
	return &smsg.Message
}

func (smsg *SignedMessage) String() string {
	errStr := "(error encoding SignedMessage)"
	cid, err := smsg.Cid()
	if err != nil {
		return errStr
	}
	js, err := json.MarshalIndent(smsg, "", "  ")
	if err != nil {
		return errStr
	}
	return fmt.Sprintf("SignedMessage cid=[%v]: %s", cid, string(js))
}

var _ ChainMsg = &SignedMessage{}
