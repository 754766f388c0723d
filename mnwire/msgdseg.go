// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnwire

import (
	"io"

	"github.com/btcsuite/btcd/wire"
)

// CmdDSeg is the protocol command string for a masternode list request.
const CmdDSeg = "dseg"

// MsgDSeg implements the wire.Message interface and represents a request
// for masternode entries.  A zero outpoint requests the full list while a
// specific outpoint requests a single entry.
type MsgDSeg struct {
	Vin wire.OutPoint
}

// WantsFullList returns whether the request asks for the entire masternode
// list rather than a single entry.
func (msg *MsgDSeg) WantsFullList() bool {
	return IsZeroOutPoint(msg.Vin)
}

// BtcDecode decodes r using the overlay protocol encoding into the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgDSeg) BtcDecode(r io.Reader, pver uint32, enc wire.MessageEncoding) error {
	return readOutPoint(r, &msg.Vin)
}

// BtcEncode encodes the receiver to w using the overlay protocol encoding.
// This is part of the wire.Message interface implementation.
func (msg *MsgDSeg) BtcEncode(w io.Writer, pver uint32, enc wire.MessageEncoding) error {
	return writeOutPoint(w, &msg.Vin)
}

// Command returns the protocol command string for the message.  This is
// part of the wire.Message interface implementation.
func (msg *MsgDSeg) Command() string {
	return CmdDSeg
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgDSeg) MaxPayloadLength(pver uint32) uint32 {
	return 36
}

// NewMsgDSeg returns a new masternode list request for the given outpoint.
// Pass ZeroOutPoint to request the full list.
func NewMsgDSeg(vin wire.OutPoint) *MsgDSeg {
	return &MsgDSeg{Vin: vin}
}
