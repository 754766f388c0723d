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

// CmdSpork is the protocol command string for a signed spork message.
const CmdSpork = "spork"

// MsgSpork implements the wire.Message interface and represents a signed
// network-wide flag.  The value encodes the unix time at which the flag
// becomes active; the record with the greatest signed time wins.
type MsgSpork struct {
	SporkID    int32
	Value      int64
	TimeSigned int64
	Sig        []byte
}

// BtcDecode decodes r using the overlay protocol encoding into the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgSpork) BtcDecode(r io.Reader, pver uint32, enc wire.MessageEncoding) error {
	if err := readInt32(r, &msg.SporkID); err != nil {
		return err
	}
	if err := readInt64(r, &msg.Value); err != nil {
		return err
	}
	if err := readInt64(r, &msg.TimeSigned); err != nil {
		return err
	}
	sig, err := readSig(r, pver, "MsgSpork.Sig")
	if err != nil {
		return err
	}
	msg.Sig = sig
	return nil
}

// BtcEncode encodes the receiver to w using the overlay protocol encoding.
// This is part of the wire.Message interface implementation.
func (msg *MsgSpork) BtcEncode(w io.Writer, pver uint32, enc wire.MessageEncoding) error {
	if err := writeInt32(w, msg.SporkID); err != nil {
		return err
	}
	if err := writeInt64(w, msg.Value); err != nil {
		return err
	}
	if err := writeInt64(w, msg.TimeSigned); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, pver, msg.Sig)
}

// Command returns the protocol command string for the message.  This is
// part of the wire.Message interface implementation.
func (msg *MsgSpork) Command() string {
	return CmdSpork
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgSpork) MaxPayloadLength(pver uint32) uint32 {
	return 4 + 8 + 8 + 3 + MaxSignatureSize
}

// Hash returns the identifying hash of the spork record.  The signature is
// excluded, so the hash identifies the signed statement itself.
func (msg *MsgSpork) Hash() chainhash.Hash {
	var buf bytes.Buffer
	_ = writeInt32(&buf, msg.SporkID)
	_ = writeInt64(&buf, msg.Value)
	_ = writeInt64(&buf, msg.TimeSigned)
	return chainhash.DoubleHashH(buf.Bytes())
}

// NewMsgSpork returns a new unsigned spork message that conforms to the
// wire.Message interface.
func NewMsgSpork(sporkID int32, value, timeSigned int64) *MsgSpork {
	return &MsgSpork{
		SporkID:    sporkID,
		Value:      value,
		TimeSigned: timeSigned,
	}
}
