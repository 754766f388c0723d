// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnmgr

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/wire"

	"github.com/mergesuite/merged/mnode"
	"github.com/mergesuite/merged/mnwire"
)

// applyBanScore penalizes the peer according to the rejection, if it
// carries a score.
func applyBanScore(peer RemotePeer, err error) {
	var rerr RuleError
	if !errors.As(err, &rerr) || rerr.BanScore == 0 || peer == nil {
		return
	}
	peer.AddBanScore(rerr.BanScore, 0, rerr.Description)
}

// ProcessMessage dispatches a masternode overlay message from a peer.
// Messages are ignored until initial sync has completed.
func (m *Manager) ProcessMessage(peer RemotePeer, msg wire.Message) {
	if !m.cfg.IsSynced() {
		return
	}

	switch msg := msg.(type) {
	case *mnwire.MsgMNBroadcast:
		m.ProcessBroadcast(peer, msg)
	case *mnwire.MsgMNPing:
		m.ProcessPing(peer, msg)
	case *mnwire.MsgDSeg:
		m.ProcessDSeg(peer, msg)
	}
}

// ProcessBroadcast handles a received masternode announcement.  The peer
// may be nil when the announcement originates locally.
func (m *Manager) ProcessBroadcast(peer RemotePeer, mnb *mnwire.MsgMNBroadcast) {
	m.procMtx.Lock()
	defer m.procMtx.Unlock()

	hash := mnb.Hash()

	m.mtx.Lock()
	if m.seenBroadcasts.Exists(hash) {
		m.mtx.Unlock()

		// Re-gossip of a known announcement still counts toward list
		// sync progress.
		m.notifyListUpdated()
		return
	}
	m.seenBroadcasts.Add(mnb)
	m.mtx.Unlock()

	admit, err := m.checkBroadcast(mnb)
	if err != nil {
		log.Debugf("Rejected announcement %s: %v", hash, err)
		applyBanScore(peer, err)
		return
	}
	if !admit {
		return
	}

	// Make sure the signing collateral key actually controls the
	// announced outpoint.  This is expensive, so it runs once per
	// masternode at admission time.
	if !m.cfg.Signer.IsVinAssociatedWithPubkey(m.cfg.FetchUtxo, mnb.Vin,
		mnb.PubKeyCollateral, m.cfg.CollateralAmount) {

		err := ruleError(ErrCollateralMismatch, 33, fmt.Sprintf(
			"announcement %s has mismatched collateral key and "+
				"outpoint", mnb.Vin.String()))
		log.Debugf("Rejected announcement %s: %v", hash, err)
		applyBanScore(peer, err)
		return
	}

	if err := m.checkInputsAndAdd(mnb); err != nil {
		log.Debugf("Rejected announcement %s: %v", hash, err)
		applyBanScore(peer, err)
	}
}

// ProcessPing handles a received masternode ping.  When the ping targets
// an entry the registry does not have, the sending peer is asked for the
// missing announcement.
func (m *Manager) ProcessPing(peer RemotePeer, mnp *mnwire.MsgMNPing) {
	m.procMtx.Lock()
	defer m.procMtx.Unlock()

	hash := mnp.Hash()

	m.mtx.Lock()
	if m.seenPings.Exists(hash) {
		m.mtx.Unlock()
		return
	}
	m.seenPings.Add(mnp)
	m.mtx.Unlock()

	askFor, err := m.checkPing(mnp)
	if err != nil {
		log.Debugf("Rejected ping %s: %v", hash, err)
		applyBanScore(peer, err)
		return
	}
	if askFor && peer != nil {
		m.AskForMN(peer, mnp.Vin)
	}
}

// ProcessDSeg answers a masternode list request.  Full list requests from
// the same main network peer inside the throttle window are penalized.
func (m *Manager) ProcessDSeg(peer RemotePeer, dseg *mnwire.MsgDSeg) {
	now := m.cfg.AdjustedTime()

	if !dseg.WantsFullList() {
		m.mtx.Lock()
		mn := m.findByVin(dseg.Vin)
		var mnb *mnwire.MsgMNBroadcast
		if mn != nil && mn.IsEnabled() && !mn.Addr.IsRFC1918() &&
			!mn.Addr.IsLocal() {

			mnb = mn.Broadcast()
			m.seenBroadcasts.Add(mnb)
		}
		m.mtx.Unlock()

		if mnb == nil {
			// We do not have the entry either.  Turn the request
			// around so the peer can fill us in if it learns of it.
			log.Debugf("No masternode entry %s for peer %s",
				dseg.Vin.String(), peer.Addr())
			m.AskForMN(peer, dseg.Vin)
			return
		}

		hash := mnb.Hash()
		peer.QueueInventory(wire.NewInvVect(
			mnwire.InvTypeMasternodeAnnounce, &hash))
		log.Debugf("Sent single masternode entry %s to peer %s",
			dseg.Vin.String(), peer.Addr())
		return
	}

	if m.cfg.ChainParams.Net == wire.MainNet &&
		!peer.NA().IsRFC1918() && !peer.NA().IsLocal() {

		m.mtx.Lock()
		if expiry, ok := m.askedUsForList[peer.Addr()]; ok &&
			expiry > now {

			m.mtx.Unlock()
			peer.AddBanScore(34, 0, "peer asked for the "+
				"masternode list too often")
			return
		}
		m.askedUsForList[peer.Addr()] =
			now + mnode.MasternodesDsegSeconds
		m.mtx.Unlock()
	}

	m.mtx.Lock()
	count := int32(0)
	for _, mn := range m.nodes {
		if mn.Addr.IsRFC1918() || mn.Addr.IsLocal() {
			continue
		}
		if !mn.IsEnabled() {
			continue
		}
		mnb := mn.Broadcast()
		m.seenBroadcasts.Add(mnb)
		hash := mnb.Hash()
		peer.QueueInventory(wire.NewInvVect(
			mnwire.InvTypeMasternodeAnnounce, &hash))
		count++
	}
	m.mtx.Unlock()

	log.Debugf("Sent %d masternode entries to peer %s", count,
		peer.Addr())
	peer.QueueMessage(mnwire.NewMsgSyncStatusCount(mnwire.SyncItemList,
		count), nil)
}
