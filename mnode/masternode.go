// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnode

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"

	"github.com/mergesuite/merged/mnwire"
)

// Timing constants for the masternode liveness protocol.  All values are
// in seconds.
const (
	// MasternodeMinMNPSeconds is the minimum interval between pings from
	// the same masternode, and the interval after which a missing entry
	// may be re-requested from a peer.
	MasternodeMinMNPSeconds = 10 * 60

	// MasternodeMinMNBSeconds is the minimum interval between
	// re-announcements of the same masternode.
	MasternodeMinMNBSeconds = 5 * 60

	// MasternodePingSeconds is the interval at which an operator sends
	// pings for its own masternode.
	MasternodePingSeconds = 5 * 60

	// MasternodeExpirationSeconds is the ping staleness threshold after
	// which an entry is marked expired.
	MasternodeExpirationSeconds = 120 * 60

	// MasternodeRemovalSeconds is the ping staleness threshold after
	// which an entry is marked for removal.  Seen caches expire at twice
	// this value.
	MasternodeRemovalSeconds = 130 * 60

	// MasternodeCheckSeconds rate-limits per-entry state ticks.
	MasternodeCheckSeconds = 5

	// MasternodesDsegSeconds is the per-peer throttle on full list
	// requests.
	MasternodesDsegSeconds = 3 * 60 * 60

	// MasternodeMinConfirmations is the collateral depth required before
	// an announcement is admitted.
	MasternodeMinConfirmations = 15

	// MNWinnerMinimumAge is the minimum entry age, in seconds, required
	// for payment and rank eligibility while payment enforcement is
	// active.
	MNWinnerMinimumAge = 4000
)

// ActiveState is the liveness state of a registered masternode.
type ActiveState int32

// Masternode activity states.
const (
	// StatePreEnabled is a freshly announced masternode that has not yet
	// proven sustained liveness.
	StatePreEnabled ActiveState = iota

	// StateEnabled is a live masternode eligible for payment.
	StateEnabled

	// StateExpired is a masternode whose pings have gone stale.
	StateExpired

	// StateRemove is a masternode whose pings are stale enough that the
	// entry is swept on the next removal pass.
	StateRemove

	// StateVinSpent is a masternode whose collateral has been spent.
	// The state is terminal.
	StateVinSpent

	// StatePoseBan is a masternode banned by proof-of-service
	// enforcement.
	StatePoseBan
)

// String returns the state as a human-readable string.
func (s ActiveState) String() string {
	switch s {
	case StatePreEnabled:
		return "PRE_ENABLED"
	case StateEnabled:
		return "ENABLED"
	case StateExpired:
		return "EXPIRED"
	case StateRemove:
		return "REMOVE"
	case StateVinSpent:
		return "VIN_SPENT"
	case StatePoseBan:
		return "POSE_BAN"
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(s))
}

// CollateralChecker reports whether the collateral output behind the given
// outpoint is still unspent.
type CollateralChecker func(wire.OutPoint) bool

// Masternode is one registered remote service node.  Instances are plain
// values; the registry hands out copies, never references into its own
// storage.
type Masternode struct {
	// Vin is the collateral outpoint.  It is the primary identity of the
	// masternode and is unique across the registry.
	Vin wire.OutPoint

	// Addr is the endpoint the masternode serves from.
	Addr mnwire.ServiceAddress

	// PubKeyCollateral is the serialized public key owning the
	// collateral output.
	PubKeyCollateral []byte

	// PubKeyMasternode is the serialized operator public key.
	PubKeyMasternode []byte

	// Sig and SigTime come from the admitting announcement.
	Sig     []byte
	SigTime int64

	// ProtocolVersion is the protocol version the masternode runs.
	ProtocolVersion int32

	// LastPing is the freshest ping accepted for this entry.
	LastPing mnwire.MsgMNPing

	// LastPaid is the unix time of the most recent payment, or zero if
	// no payment has been observed.
	LastPaid int64

	// ActiveState is the current liveness state.
	ActiveState ActiveState

	lastTimeChecked int64
}

// NewMasternodeFromBroadcast returns a masternode entry populated from an
// announcement.
func NewMasternodeFromBroadcast(mnb *mnwire.MsgMNBroadcast) *Masternode {
	return &Masternode{
		Vin:              mnb.Vin,
		Addr:             mnb.Addr,
		PubKeyCollateral: mnb.PubKeyCollateral,
		PubKeyMasternode: mnb.PubKeyMasternode,
		Sig:              mnb.Sig,
		SigTime:          mnb.SigTime,
		ProtocolVersion:  mnb.ProtocolVersion,
		LastPing:         mnb.LastPing,
		ActiveState:      StatePreEnabled,
	}
}

// Broadcast reconstructs the announcement message for the entry, used when
// serving dseg requests.
func (mn *Masternode) Broadcast() *mnwire.MsgMNBroadcast {
	return &mnwire.MsgMNBroadcast{
		Vin:              mn.Vin,
		Addr:             mn.Addr,
		PubKeyCollateral: mn.PubKeyCollateral,
		PubKeyMasternode: mn.PubKeyMasternode,
		Sig:              mn.Sig,
		SigTime:          mn.SigTime,
		ProtocolVersion:  mn.ProtocolVersion,
		LastPing:         mn.LastPing,
	}
}

// IsEnabled returns whether the entry is in the enabled state.
func (mn *Masternode) IsEnabled() bool {
	return mn.ActiveState == StateEnabled
}

// IsPingedWithin returns whether the entry received a ping within the
// given number of seconds before now.
func (mn *Masternode) IsPingedWithin(seconds, now int64) bool {
	return now-mn.LastPing.SigTime < seconds
}

// IsBroadcastedWithin returns whether the entry was announced within the
// given number of seconds before now.
func (mn *Masternode) IsBroadcastedWithin(seconds, now int64) bool {
	return now-mn.SigTime < seconds
}

// Check runs one tick of the liveness state machine.  Ticks are
// rate-limited to once per MasternodeCheckSeconds unless force is set.
// The collateral checker may be nil, in which case the spent check is
// skipped.
func (mn *Masternode) Check(now int64, unspent CollateralChecker, force bool) {
	if !force && now-mn.lastTimeChecked < MasternodeCheckSeconds {
		return
	}
	mn.lastTimeChecked = now

	// Once the collateral is spent there is no way back.
	if mn.ActiveState == StateVinSpent {
		return
	}

	if !mn.IsPingedWithin(MasternodeRemovalSeconds, now) {
		mn.ActiveState = StateRemove
		return
	}

	if !mn.IsPingedWithin(MasternodeExpirationSeconds, now) {
		mn.ActiveState = StateExpired
		return
	}

	if mn.LastPing.SigTime-mn.SigTime < MasternodeMinMNPSeconds {
		mn.ActiveState = StatePreEnabled
		return
	}

	if unspent != nil && !unspent(mn.Vin) {
		mn.ActiveState = StateVinSpent
		return
	}

	mn.ActiveState = StateEnabled
}

// UpdateFromBroadcast refreshes the entry from a newer announcement.
func (mn *Masternode) UpdateFromBroadcast(mnb *mnwire.MsgMNBroadcast) {
	mn.Addr = mnb.Addr
	mn.PubKeyCollateral = mnb.PubKeyCollateral
	mn.PubKeyMasternode = mnb.PubKeyMasternode
	mn.Sig = mnb.Sig
	mn.SigTime = mnb.SigTime
	mn.ProtocolVersion = mnb.ProtocolVersion
	if mnb.LastPing.SigTime > mn.LastPing.SigTime {
		mn.LastPing = mnb.LastPing
	}
}

// String returns a short description of the entry.
func (mn *Masternode) String() string {
	return fmt.Sprintf("masternode %s %s %s", mn.Vin.String(),
		mn.Addr.String(), mn.ActiveState)
}
