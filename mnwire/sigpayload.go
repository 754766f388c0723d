// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnwire

import (
	"strconv"
)

// SignaturePayload returns the exact string covered by the broadcast
// signature.  The raw serialized public keys are embedded byte-for-byte,
// which matches what existing implementations on the network sign.
func (msg *MsgMNBroadcast) SignaturePayload() string {
	return msg.Addr.String() +
		strconv.FormatInt(msg.SigTime, 10) +
		string(msg.PubKeyCollateral) +
		string(msg.PubKeyMasternode) +
		strconv.Itoa(int(msg.ProtocolVersion))
}

// SignaturePayload returns the exact string covered by the ping signature.
func (msg *MsgMNPing) SignaturePayload() string {
	return msg.Vin.String() + msg.BlockHash.String() +
		strconv.FormatInt(msg.SigTime, 10)
}

// SignaturePayload returns the exact string covered by the spork
// signature.
func (msg *MsgSpork) SignaturePayload() string {
	return strconv.Itoa(int(msg.SporkID)) +
		strconv.FormatInt(msg.Value, 10) +
		strconv.FormatInt(msg.TimeSigned, 10)
}
