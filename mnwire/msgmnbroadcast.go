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

// CmdMNBroadcast is the protocol command string for a masternode
// announcement.
const CmdMNBroadcast = "mnb"

// MsgMNBroadcast implements the wire.Message interface and represents the
// announcement that registers a masternode with the network.  It carries
// everything a remote node needs to admit the masternode: the collateral
// outpoint, the service address, both public keys, the announcement
// signature, and the most recent ping.
type MsgMNBroadcast struct {
	// Vin is the collateral outpoint identifying the masternode.
	Vin wire.OutPoint

	// Addr is the endpoint the masternode serves from.
	Addr ServiceAddress

	// PubKeyCollateral is the serialized public key whose address owns
	// the collateral output.
	PubKeyCollateral []byte

	// PubKeyMasternode is the serialized operator public key used to
	// sign pings.
	PubKeyMasternode []byte

	// Sig is the announcement signature by the collateral key.
	Sig []byte

	// SigTime is the unix time the announcement was signed.
	SigTime int64

	// ProtocolVersion is the protocol version the masternode runs.
	ProtocolVersion int32

	// LastPing is the most recent ping known to the announcer.
	LastPing MsgMNPing
}

// BtcDecode decodes r using the overlay protocol encoding into the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgMNBroadcast) BtcDecode(r io.Reader, pver uint32, enc wire.MessageEncoding) error {
	if err := readOutPoint(r, &msg.Vin); err != nil {
		return err
	}
	if err := readServiceAddress(r, &msg.Addr); err != nil {
		return err
	}
	pk, err := readPubKey(r, pver, "MsgMNBroadcast.PubKeyCollateral")
	if err != nil {
		return err
	}
	msg.PubKeyCollateral = pk
	pk, err = readPubKey(r, pver, "MsgMNBroadcast.PubKeyMasternode")
	if err != nil {
		return err
	}
	msg.PubKeyMasternode = pk
	sig, err := readSig(r, pver, "MsgMNBroadcast.Sig")
	if err != nil {
		return err
	}
	msg.Sig = sig
	if err := readInt64(r, &msg.SigTime); err != nil {
		return err
	}
	if err := readInt32(r, &msg.ProtocolVersion); err != nil {
		return err
	}
	return msg.LastPing.BtcDecode(r, pver, enc)
}

// BtcEncode encodes the receiver to w using the overlay protocol encoding.
// This is part of the wire.Message interface implementation.
func (msg *MsgMNBroadcast) BtcEncode(w io.Writer, pver uint32, enc wire.MessageEncoding) error {
	if err := writeOutPoint(w, &msg.Vin); err != nil {
		return err
	}
	if err := writeServiceAddress(w, &msg.Addr); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, pver, msg.PubKeyCollateral); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, pver, msg.PubKeyMasternode); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, pver, msg.Sig); err != nil {
		return err
	}
	if err := writeInt64(w, msg.SigTime); err != nil {
		return err
	}
	if err := writeInt32(w, msg.ProtocolVersion); err != nil {
		return err
	}
	return msg.LastPing.BtcEncode(w, pver, enc)
}

// Command returns the protocol command string for the message.  This is
// part of the wire.Message interface implementation.
func (msg *MsgMNBroadcast) Command() string {
	return CmdMNBroadcast
}

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.  This is part of the wire.Message interface implementation.
func (msg *MsgMNBroadcast) MaxPayloadLength(pver uint32) uint32 {
	// Outpoint + address + two pubkeys + signature + sig time +
	// protocol version + embedded ping.
	plen := uint32(36 + 18)
	plen += 2 * (3 + MaxPubKeySize)
	plen += 3 + MaxSignatureSize
	plen += 8 + 4
	plen += msg.LastPing.MaxPayloadLength(pver)
	return plen
}

// Hash returns the identifying hash of the broadcast, which covers the
// collateral outpoint, the collateral public key, and the signing time.
// Signatures are excluded so a re-signed but otherwise identical
// announcement dedups to the same inventory entry.
func (msg *MsgMNBroadcast) Hash() chainhash.Hash {
	var buf bytes.Buffer
	_ = writeOutPoint(&buf, &msg.Vin)
	_, _ = buf.Write(msg.PubKeyCollateral)
	_ = writeInt64(&buf, msg.SigTime)
	return chainhash.DoubleHashH(buf.Bytes())
}

// NewMsgMNBroadcast returns a new masternode announcement message that
// conforms to the wire.Message interface.
func NewMsgMNBroadcast(vin wire.OutPoint, addr ServiceAddress, collateralKey,
	operatorKey []byte, sigTime int64, protocolVersion int32) *MsgMNBroadcast {

	return &MsgMNBroadcast{
		Vin:              vin,
		Addr:             addr,
		PubKeyCollateral: collateralKey,
		PubKeyMasternode: operatorKey,
		SigTime:          sigTime,
		ProtocolVersion:  protocolVersion,
	}
}
