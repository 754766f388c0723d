// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnmgr

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/mergesuite/merged/mnode"
	"github.com/mergesuite/merged/mnwire"
)

// TestProcessBroadcastAdmits tests the happy admission path and the seen
// cache dedup of the same announcement.
func TestProcessBroadcastAdmits(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)
	mnb := h.signedBroadcast(keys, vin, "203.0.113.5", h.now-100)

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessBroadcast(peer, mnb)

	require.Equal(t, 1, h.mgr.Size())
	require.Zero(t, peer.banScore)
	require.Equal(t, 1, h.relayed)
	require.NotNil(t, h.mgr.FindByVin(vin))

	hash := mnb.Hash()
	require.NotNil(t, h.mgr.SeenBroadcast(hash))

	// The same announcement again is a no-op that still counts toward
	// list sync progress.
	dirty := h.listDirty
	h.mgr.ProcessBroadcast(peer, mnb)
	require.Equal(t, 1, h.mgr.Size())
	require.Equal(t, 1, h.relayed)
	require.Equal(t, dirty+1, h.listDirty)
}

// TestProcessBroadcastBadSignature tests that a forged announcement earns
// the maximum penalty.
func TestProcessBroadcastBadSignature(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)
	mnb := h.signedBroadcast(keys, vin, "203.0.113.5", h.now-100)

	wrongKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	mnb.Sig, err = h.signer.SignMessage(mnb.SignaturePayload(), wrongKey)
	require.NoError(t, err)

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessBroadcast(peer, mnb)

	require.Zero(t, h.mgr.Size())
	require.EqualValues(t, 100, peer.banScore)
}

// TestProcessBroadcastFutureTime tests the light penalty for clock skew
// beyond the allowed window.
func TestProcessBroadcastFutureTime(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)
	mnb := h.signedBroadcast(keys, vin, "203.0.113.5",
		h.now+maxFutureSkewSeconds+1)

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessBroadcast(peer, mnb)

	require.Zero(t, h.mgr.Size())
	require.EqualValues(t, 1, peer.banScore)
}

// TestProcessBroadcastObsoleteVersion tests that outdated announcements
// are dropped without penalty.
func TestProcessBroadcastObsoleteVersion(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)

	mnb := h.signedBroadcast(keys, vin, "203.0.113.5", h.now-100)
	mnb.ProtocolVersion = testProtocolVersion - 1
	sig, err := h.signer.SignMessage(mnb.SignaturePayload(),
		keys.collateralPriv)
	require.NoError(t, err)
	mnb.Sig = sig

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessBroadcast(peer, mnb)

	require.Zero(t, h.mgr.Size())
	require.Zero(t, peer.banScore)
}

// TestProcessBroadcastImmatureCollateral tests that a young collateral is
// not admitted but a re-announcement once buried is.
func TestProcessBroadcastImmatureCollateral(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)
	h.utxos[vin].Confirmations = mnode.MasternodeMinConfirmations - 1

	mnb := h.signedBroadcast(keys, vin, "203.0.113.5", h.now-100)
	peer := newTestRemotePeer("198.51.100.1")

	h.mgr.ProcessBroadcast(peer, mnb)
	require.Zero(t, h.mgr.Size())
	require.Zero(t, peer.banScore)

	// The rejected announcement stays in the seen cache, so replaying
	// the identical gossip cannot admit it.
	h.utxos[vin].Confirmations = mnode.MasternodeMinConfirmations
	h.mgr.ProcessBroadcast(peer, mnb)
	require.Zero(t, h.mgr.Size())

	// A fresh announcement from the operator does.
	mnb2 := h.signedBroadcast(keys, vin, "203.0.113.5", h.now-50)
	h.mgr.ProcessBroadcast(peer, mnb2)
	require.Equal(t, 1, h.mgr.Size())
}

// TestProcessBroadcastWrongCollateral tests rejection and the penalty when
// the collateral output is missing or locked to another key.
func TestProcessBroadcastWrongCollateral(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)
	peer := newTestRemotePeer("198.51.100.1")

	// Locked to another key.
	other := newTestKeys(t)
	otherScript, err := h.signer.PayeeScript(other.collateralPub)
	require.NoError(t, err)
	h.utxos[vin].PkScript = otherScript

	mnb := h.signedBroadcast(keys, vin, "203.0.113.5", h.now-100)
	h.mgr.ProcessBroadcast(peer, mnb)
	require.Zero(t, h.mgr.Size())
	require.EqualValues(t, 33, peer.banScore)

	// Spent entirely.
	delete(h.utxos, vin)
	mnb2 := h.signedBroadcast(keys, vin, "203.0.113.5", h.now-50)
	h.mgr.ProcessBroadcast(peer, mnb2)
	require.Zero(t, h.mgr.Size())
	require.EqualValues(t, 66, peer.banScore)
}

// TestProcessPingUpdatesEntry tests that a fresh ping advances the
// entry's liveness and lands in the seen cache.
func TestProcessPingUpdatesEntry(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)

	mnb := h.signedBroadcast(keys, vin, "203.0.113.5",
		h.now-2*mnode.MasternodeMinMNPSeconds)
	h.mgr.ProcessBroadcast(nil, mnb)
	require.Equal(t, 1, h.mgr.Size())

	mnp := h.signedPing(keys, vin, h.now-30)
	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessPing(peer, mnp)

	require.Zero(t, peer.banScore)
	mn := h.mgr.FindByVin(vin)
	require.Equal(t, h.now-30, mn.LastPing.SigTime)
	require.True(t, mn.IsEnabled())

	hash := mnp.Hash()
	require.NotNil(t, h.mgr.SeenPing(hash))
}

// TestProcessPingBadSignature tests the ping forgery penalty.
func TestProcessPingBadSignature(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)
	h.mgr.ProcessBroadcast(nil, h.signedBroadcast(keys, vin,
		"203.0.113.5", h.now-2*mnode.MasternodeMinMNPSeconds))

	// Signed by the collateral key instead of the operator key.
	mnp := mnwire.NewMsgMNPing(vin, h.tipHash(), h.now-30)
	sig, err := h.signer.SignMessage(mnp.SignaturePayload(),
		keys.collateralPriv)
	require.NoError(t, err)
	mnp.Sig = sig

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessPing(peer, mnp)
	require.EqualValues(t, 33, peer.banScore)
}

// TestProcessPingUnknownEntry tests that a ping for an unknown entry asks
// the sender for the matching announcement.
func TestProcessPingUnknownEntry(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)

	mnp := h.signedPing(keys, vin, h.now-30)
	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessPing(peer, mnp)

	require.Len(t, peer.queued, 1)
	dseg, ok := peer.queued[0].(*mnwire.MsgDSeg)
	require.True(t, ok)
	require.Equal(t, vin, dseg.Vin)

	// A second ping must not re-ask inside the throttle window.
	mnp2 := h.signedPing(keys, vin, h.now-20)
	h.mgr.ProcessPing(peer, mnp2)
	require.Len(t, peer.queued, 1)
}

// TestProcessPingStaleBlock tests the penalty for pings referencing deep
// blocks.
func TestProcessPingStaleBlock(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)
	h.mgr.ProcessBroadcast(nil, h.signedBroadcast(keys, vin,
		"203.0.113.5", h.now-2*mnode.MasternodeMinMNPSeconds))

	staleHash := blockHashAt(h.height - maxPingBlockDepth - 1)
	h.heights[staleHash] = h.height - maxPingBlockDepth - 1

	mnp := mnwire.NewMsgMNPing(vin, staleHash, h.now-30)
	sig, err := h.signer.SignMessage(mnp.SignaturePayload(),
		keys.operatorPriv)
	require.NoError(t, err)
	mnp.Sig = sig

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessPing(peer, mnp)
	require.EqualValues(t, 33, peer.banScore)
}

// TestProcessDSeg tests full list serving, the reply count, and the
// repeat request penalty.
func TestProcessDSeg(t *testing.T) {
	h := newHarness(t)
	h.addEnabled(0)
	h.addEnabled(1)

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessDSeg(peer, mnwire.NewMsgDSeg(mnwire.ZeroOutPoint))

	require.Len(t, peer.invs, 2)
	require.Len(t, peer.queued, 1)
	ssc, ok := peer.queued[0].(*mnwire.MsgSyncStatusCount)
	require.True(t, ok)
	require.Equal(t, mnwire.SyncItemList, ssc.ItemID)
	require.EqualValues(t, 2, ssc.Count)

	// Asking again inside the throttle window is penalized.
	h.mgr.ProcessDSeg(peer, mnwire.NewMsgDSeg(mnwire.ZeroOutPoint))
	require.EqualValues(t, 34, peer.banScore)
}

// TestProcessDSegSingle tests single entry serving by inventory.
func TestProcessDSegSingle(t *testing.T) {
	h := newHarness(t)
	_, vin := h.addEnabled(0)

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessDSeg(peer, mnwire.NewMsgDSeg(vin))

	require.Zero(t, peer.banScore)
	require.Empty(t, peer.queued)
	require.Len(t, peer.invs, 1)
	require.Equal(t, mnwire.InvTypeMasternodeAnnounce, peer.invs[0].Type)

	// The advertised announcement is answerable from the seen cache.
	require.NotNil(t, h.mgr.SeenBroadcast(peer.invs[0].Hash))
}

// TestProcessDSegSingleUnknown tests that a request for an entry we do
// not have is turned back into a request to the asking peer.
func TestProcessDSegSingleUnknown(t *testing.T) {
	h := newHarness(t)
	var vin wire.OutPoint
	vin.Hash[0] = 7

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessDSeg(peer, mnwire.NewMsgDSeg(vin))

	require.Zero(t, peer.banScore)
	require.Empty(t, peer.invs)
	require.Len(t, peer.queued, 1)
	dseg, ok := peer.queued[0].(*mnwire.MsgDSeg)
	require.True(t, ok)
	require.Equal(t, vin, dseg.Vin)
}

// TestCheckAndRemoveSweeps tests removal of entries whose pings have gone
// stale past the removal window.
func TestCheckAndRemoveSweeps(t *testing.T) {
	h := newHarness(t)
	_, vin := h.addEnabled(0)
	h.addEnabled(1)

	h.mgr.CheckAndRemove(false)
	require.Equal(t, 2, h.mgr.Size())

	// Advance the clock past the removal window for one entry only by
	// refreshing the other with a newer ping.
	h.now += mnode.MasternodeRemovalSeconds + 1

	m := h.mgr
	m.mtx.Lock()
	fresh := m.findByVin(m.nodes[1].Vin)
	fresh.LastPing.SigTime = h.now - 60
	m.mtx.Unlock()

	h.mgr.CheckAndRemove(false)
	require.Equal(t, 1, h.mgr.Size())
	require.Nil(t, h.mgr.FindByVin(vin))
}

// TestCheckAndRemovePurgesSeenBroadcast tests that sweeping an entry also
// forgets its announcements, so a later ping can fetch it back.
func TestCheckAndRemovePurgesSeenBroadcast(t *testing.T) {
	h := newHarness(t)
	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)

	mnb := h.signedBroadcast(keys, vin, "203.0.113.5", h.now-100)
	h.mgr.ProcessBroadcast(nil, mnb)
	require.Equal(t, 1, h.mgr.Size())

	hash := mnb.Hash()
	require.NotNil(t, h.mgr.SeenBroadcast(hash))

	h.now += mnode.MasternodeRemovalSeconds + 101
	h.mgr.CheckAndRemove(false)

	require.Zero(t, h.mgr.Size())
	require.Nil(t, h.mgr.SeenBroadcast(hash))
}

// TestCheckAndRemoveObsoleteProtocol tests that entries below the
// required protocol version are swept regardless of liveness.
func TestCheckAndRemoveObsoleteProtocol(t *testing.T) {
	h := newHarness(t)
	_, vin := h.addEnabled(0)
	h.addEnabled(1)

	m := h.mgr
	m.mtx.Lock()
	m.findByVin(vin).ProtocolVersion = testProtocolVersion - 1
	m.mtx.Unlock()

	h.mgr.CheckAndRemove(false)
	require.Equal(t, 1, h.mgr.Size())
	require.Nil(t, h.mgr.FindByVin(vin))
}

// TestDsegUpdateThrottled tests the outgoing full list request throttle.
func TestDsegUpdateThrottled(t *testing.T) {
	h := newHarness(t)
	peer := newTestRemotePeer("198.51.100.1")

	h.mgr.DsegUpdate(peer)
	require.Len(t, peer.queued, 1)

	h.mgr.DsegUpdate(peer)
	require.Len(t, peer.queued, 1)

	// The throttle expires.
	h.now += mnode.MasternodesDsegSeconds + 1
	h.mgr.DsegUpdate(peer)
	require.Len(t, peer.queued, 2)
}

// TestProcessMessageGatedOnSync tests that gossip is ignored before
// initial sync completes.
func TestProcessMessageGatedOnSync(t *testing.T) {
	h := newHarness(t)
	h.mgr.cfg.IsSynced = func() bool { return false }

	keys := newTestKeys(t)
	vin := h.fundCollateral(keys, 0)
	mnb := h.signedBroadcast(keys, vin, "203.0.113.5", h.now-100)

	peer := newTestRemotePeer("198.51.100.1")
	h.mgr.ProcessMessage(peer, mnb)
	require.Zero(t, h.mgr.Size())
}
