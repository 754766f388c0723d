// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnwire

import (
	"io"

	"github.com/btcsuite/btcd/wire"
)

// CmdGetSporks is the protocol command string for a spork list request.
const CmdGetSporks = "getsporks"

// MsgGetSporks implements the wire.Message interface and requests every
// active spork record from a peer.  It has no payload.
type MsgGetSporks struct{}

// BtcDecode decodes r using the overlay protocol encoding into the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgGetSporks) BtcDecode(r io.Reader, pver uint32, enc wire.MessageEncoding) error {
	return nil
}

// BtcEncode encodes the receiver to w using the overlay protocol encoding.
// This is part of the wire.Message interface implementation.
func (msg *MsgGetSporks) BtcEncode(w io.Writer, pver uint32, enc wire.MessageEncoding) error {
	return nil
}

// Command returns the protocol command string for the message.  This is
// part of the wire.Message interface implementation.
func (msg *MsgGetSporks) Command() string {
	return CmdGetSporks
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgGetSporks) MaxPayloadLength(pver uint32) uint32 {
	return 0
}

// NewMsgGetSporks returns a new spork list request that conforms to the
// wire.Message interface.
func NewMsgGetSporks() *MsgGetSporks {
	return &MsgGetSporks{}
}
