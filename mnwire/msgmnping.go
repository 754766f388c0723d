// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnwire

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// CmdMNPing is the protocol command string for a masternode ping.
const CmdMNPing = "mnp"

// MsgMNPing implements the wire.Message interface and represents a
// masternode liveness message.  It is signed with the masternode operator
// key and references a recent block hash to prove the sender is following
// the active chain.
type MsgMNPing struct {
	// Vin is the collateral outpoint identifying the masternode.
	Vin wire.OutPoint

	// BlockHash is the hash of a recent block on the sender's chain.
	BlockHash chainhash.Hash

	// SigTime is the unix time the ping was signed.
	SigTime int64

	// Sig is the recoverable compact signature by the operator key.
	Sig []byte
}

// BtcDecode decodes r using the overlay protocol encoding into the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgMNPing) BtcDecode(r io.Reader, pver uint32, enc wire.MessageEncoding) error {
	if err := readOutPoint(r, &msg.Vin); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, msg.BlockHash[:]); err != nil {
		return err
	}
	if err := readInt64(r, &msg.SigTime); err != nil {
		return err
	}
	sig, err := readSig(r, pver, "MsgMNPing.Sig")
	if err != nil {
		return err
	}
	msg.Sig = sig
	return nil
}

// BtcEncode encodes the receiver to w using the overlay protocol encoding.
// This is part of the wire.Message interface implementation.
func (msg *MsgMNPing) BtcEncode(w io.Writer, pver uint32, enc wire.MessageEncoding) error {
	if err := writeOutPoint(w, &msg.Vin); err != nil {
		return err
	}
	if _, err := w.Write(msg.BlockHash[:]); err != nil {
		return err
	}
	if err := writeInt64(w, msg.SigTime); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, pver, msg.Sig)
}

// Command returns the protocol command string for the message.  This is
// part of the wire.Message interface implementation.
func (msg *MsgMNPing) Command() string {
	return CmdMNPing
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgMNPing) MaxPayloadLength(pver uint32) uint32 {
	// Outpoint 36 bytes + block hash 32 bytes + sig time 8 bytes +
	// varint 3 bytes + max signature.
	return 36 + 32 + 8 + 3 + MaxSignatureSize
}

// Hash returns the identifying hash of the ping, which covers the
// collateral outpoint and the signing time.
func (msg *MsgMNPing) Hash() chainhash.Hash {
	var buf bytes.Buffer
	_ = writeOutPoint(&buf, &msg.Vin)
	_ = writeInt64(&buf, msg.SigTime)
	return chainhash.DoubleHashH(buf.Bytes())
}

// NewMsgMNPing returns a new masternode ping message that conforms to the
// wire.Message interface.
func NewMsgMNPing(vin wire.OutPoint, blockHash chainhash.Hash, sigTime int64) *MsgMNPing {
	return &MsgMNPing{
		Vin:       vin,
		BlockHash: blockHash,
		SigTime:   sigTime,
	}
}
