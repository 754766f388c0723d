// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnwire

import (
	"io"

	"github.com/btcsuite/btcd/wire"
)

// CmdSyncStatusCount is the protocol command string for a sync status
// count reply.
const CmdSyncStatusCount = "ssc"

// MsgSyncStatusCount implements the wire.Message interface and reports how
// many items of a given sync category were advertised in response to a
// full-list request.
type MsgSyncStatusCount struct {
	// ItemID identifies the sync category.  See the SyncItem constants.
	ItemID int32

	// Count is the number of advertised items.
	Count int32
}

// BtcDecode decodes r using the overlay protocol encoding into the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgSyncStatusCount) BtcDecode(r io.Reader, pver uint32, enc wire.MessageEncoding) error {
	if err := readInt32(r, &msg.ItemID); err != nil {
		return err
	}
	return readInt32(r, &msg.Count)
}

// BtcEncode encodes the receiver to w using the overlay protocol encoding.
// This is part of the wire.Message interface implementation.
func (msg *MsgSyncStatusCount) BtcEncode(w io.Writer, pver uint32, enc wire.MessageEncoding) error {
	if err := writeInt32(w, msg.ItemID); err != nil {
		return err
	}
	return writeInt32(w, msg.Count)
}

// Command returns the protocol command string for the message.  This is
// part of the wire.Message interface implementation.
func (msg *MsgSyncStatusCount) Command() string {
	return CmdSyncStatusCount
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgSyncStatusCount) MaxPayloadLength(pver uint32) uint32 {
	return 8
}

// NewMsgSyncStatusCount returns a new sync status count message that
// conforms to the wire.Message interface.
func NewMsgSyncStatusCount(itemID, count int32) *MsgSyncStatusCount {
	return &MsgSyncStatusCount{ItemID: itemID, Count: count}
}
