// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnmgr

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/mergesuite/merged/mnode"
	"github.com/mergesuite/merged/mnwire"
	"github.com/mergesuite/merged/spork"
)

const (
	// maxSeenBroadcasts bounds the seen announcement cache.
	maxSeenBroadcasts = 10000

	// maxSeenPings bounds the seen ping cache.
	maxSeenPings = 20000
)

// Manager is the masternode registry.  It owns the authoritative entry
// list, the seen gossip caches, and the per-peer request throttles.
type Manager struct {
	cfg Config

	mtx   sync.RWMutex
	nodes []*mnode.Masternode

	// Request throttles keyed by peer address or collateral outpoint.
	// Values are unix expiry times.
	weAskedForList map[string]int64
	askedUsForList map[string]int64
	weAskedForVin  map[wire.OutPoint]int64

	seenBroadcasts *broadcastCache
	seenPings      *pingCache

	// procMtx serializes announcement and ping processing.  It is
	// separate from mtx, which message handlers take only around each
	// registry read or update; state ticks that look up collateral still
	// run under mtx.
	procMtx sync.Mutex
}

// New returns an empty registry.
func New(cfg Config) *Manager {
	return &Manager{
		cfg:            cfg,
		weAskedForList: make(map[string]int64),
		askedUsForList: make(map[string]int64),
		weAskedForVin:  make(map[wire.OutPoint]int64),
		seenBroadcasts: newBroadcastCache(maxSeenBroadcasts),
		seenPings:      newPingCache(maxSeenPings),
	}
}

// notifyListUpdated invokes the update callback outside the registry
// lock.
func (m *Manager) notifyListUpdated() {
	if m.cfg.ListUpdated != nil {
		m.cfg.ListUpdated()
	}
}

// findByVin returns the internal entry for a collateral outpoint.  The
// caller must hold the registry lock.
func (m *Manager) findByVin(vin wire.OutPoint) *mnode.Masternode {
	for _, mn := range m.nodes {
		if mn.Vin == vin {
			return mn
		}
	}
	return nil
}

// Add inserts an entry into the registry.  It returns false when an
// entry with the same collateral outpoint already exists.
func (m *Manager) Add(mn *mnode.Masternode) bool {
	m.mtx.Lock()
	if m.findByVin(mn.Vin) != nil {
		m.mtx.Unlock()
		return false
	}
	log.Debugf("Adding new masternode %s, now %d", mn.Addr.String(),
		len(m.nodes)+1)
	m.nodes = append(m.nodes, mn)
	m.mtx.Unlock()

	m.notifyListUpdated()
	return true
}

// Remove deletes the entry with the given collateral outpoint, if any.
func (m *Manager) Remove(vin wire.OutPoint) {
	m.mtx.Lock()
	removed := false
	for i, mn := range m.nodes {
		if mn.Vin == vin {
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			removed = true
			break
		}
	}
	m.mtx.Unlock()

	if removed {
		m.notifyListUpdated()
	}
}

// FindByVin returns a copy of the entry with the given collateral
// outpoint, or nil.
func (m *Manager) FindByVin(vin wire.OutPoint) *mnode.Masternode {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	if mn := m.findByVin(vin); mn != nil {
		cp := *mn
		return &cp
	}
	return nil
}

// FindByPubKeyMasternode returns a copy of the entry operated by the
// given serialized public key, or nil.
func (m *Manager) FindByPubKeyMasternode(pubKey []byte) *mnode.Masternode {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	for _, mn := range m.nodes {
		if bytes.Equal(mn.PubKeyMasternode, pubKey) {
			cp := *mn
			return &cp
		}
	}
	return nil
}

// FindByPayee returns a copy of the first entry whose collateral key pays
// to the given script, or nil.
func (m *Manager) FindByPayee(payeeScript []byte) *mnode.Masternode {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	for _, mn := range m.nodes {
		script, err := m.cfg.Signer.PayeeScript(mn.PubKeyCollateral)
		if err != nil {
			continue
		}
		if bytes.Equal(script, payeeScript) {
			cp := *mn
			return &cp
		}
	}
	return nil
}

// Enumerate calls fn with a copy of every entry in insertion order until
// fn returns false.
func (m *Manager) Enumerate(fn func(mn mnode.Masternode) bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	for _, mn := range m.nodes {
		if !fn(*mn) {
			return
		}
	}
}

// Size returns the number of registered entries.
func (m *Manager) Size() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return len(m.nodes)
}

// CountEnabled returns the number of enabled entries at or above the
// given protocol version.  A version of -1 counts every enabled entry.
func (m *Manager) CountEnabled(protocolVersion int32) int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return m.countEnabled(protocolVersion)
}

func (m *Manager) countEnabled(protocolVersion int32) int {
	count := 0
	for _, mn := range m.nodes {
		if !mn.IsEnabled() {
			continue
		}
		if protocolVersion != -1 &&
			mn.ProtocolVersion < protocolVersion {

			continue
		}
		count++
	}
	return count
}

// StableSize returns the number of entries counted toward rank
// denominators.  While payment enforcement is active only entries older
// than the winner minimum age count, which keeps ranks stable against
// bursts of fresh announcements.
func (m *Manager) StableSize() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return m.stableSize()
}

func (m *Manager) stableSize() int {
	ageGate := m.cfg.SporkActive(spork.Spork8MasternodePaymentEnforcement)
	now := m.cfg.AdjustedTime()

	count := 0
	for _, mn := range m.nodes {
		if ageGate && now-mn.SigTime < mnode.MNWinnerMinimumAge {
			continue
		}
		count++
	}
	return count
}

// CountNetworks returns the number of entries per network class, keyed
// ipv4, ipv6, and onion.  Unroutable addresses are not counted.
func (m *Manager) CountNetworks() map[string]int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	counts := make(map[string]int, 3)
	for _, mn := range m.nodes {
		switch mn.Addr.Class() {
		case mnwire.NetworkIPv4:
			counts["ipv4"]++
		case mnwire.NetworkIPv6:
			counts["ipv6"]++
		case mnwire.NetworkOnion:
			counts["onion"]++
		}
	}
	return counts
}

// Clear empties the registry and every cache and throttle.
func (m *Manager) Clear() {
	m.mtx.Lock()
	m.nodes = nil
	m.weAskedForList = make(map[string]int64)
	m.askedUsForList = make(map[string]int64)
	m.weAskedForVin = make(map[wire.OutPoint]int64)
	m.seenBroadcasts = newBroadcastCache(maxSeenBroadcasts)
	m.seenPings = newPingCache(maxSeenPings)
	m.mtx.Unlock()

	m.notifyListUpdated()
}

// String returns summary counts for the registry and its caches.
func (m *Manager) String() string {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return fmt.Sprintf("Masternodes: %d, peers who asked us for the "+
		"list: %d, peers we asked for the list: %d, entries we asked "+
		"for: %d, seen broadcasts: %d, seen pings: %d",
		len(m.nodes), len(m.askedUsForList), len(m.weAskedForList),
		len(m.weAskedForVin), m.seenBroadcasts.Len(),
		m.seenPings.Len())
}

// CheckAndRemove runs the liveness state machine over every entry, sweeps
// entries marked for removal, and expires stale throttles and seen
// records.  When forceExpired is set, expired entries are swept as well.
func (m *Manager) CheckAndRemove(forceExpired bool) {
	now := m.cfg.AdjustedTime()
	unspent := m.collateralChecker()

	m.mtx.Lock()

	kept := m.nodes[:0]
	removedAny := false
	for _, mn := range m.nodes {
		mn.Check(now, unspent, false)

		remove := mn.ActiveState == mnode.StateRemove ||
			mn.ActiveState == mnode.StateVinSpent ||
			mn.ProtocolVersion < m.cfg.MinProtocolVersion ||
			(forceExpired && mn.ActiveState == mnode.StateExpired)
		if !remove {
			kept = append(kept, mn)
			continue
		}

		log.Debugf("Removing %s masternode %s", mn.ActiveState,
			mn.Addr.String())
		removedAny = true

		// Forget the entry's announcements and the ask throttle so a
		// later ping can fetch the entry back without a brand new
		// announcement.
		m.seenBroadcasts.RemoveVin(mn.Vin)
		delete(m.weAskedForVin, mn.Vin)
	}
	for i := len(kept); i < len(m.nodes); i++ {
		m.nodes[i] = nil
	}
	m.nodes = kept

	for addr, expiry := range m.askedUsForList {
		if expiry < now {
			delete(m.askedUsForList, addr)
		}
	}
	for addr, expiry := range m.weAskedForList {
		if expiry < now {
			delete(m.weAskedForList, addr)
		}
	}
	for vin, expiry := range m.weAskedForVin {
		if expiry < now {
			delete(m.weAskedForVin, vin)
		}
	}

	m.seenBroadcasts.Sweep(now)
	m.seenPings.Sweep(now)

	m.mtx.Unlock()

	if removedAny {
		m.notifyListUpdated()
	}
}

// collateralChecker adapts the configured utxo fetcher into the per-entry
// spent check.
func (m *Manager) collateralChecker() mnode.CollateralChecker {
	if m.cfg.FetchUtxo == nil {
		return nil
	}
	return func(vin wire.OutPoint) bool {
		utxo, err := m.cfg.FetchUtxo(vin)
		return err == nil && utxo != nil
	}
}

// DsegUpdate requests the full masternode list from a peer.  Repeat
// requests to the same main network peer inside the throttle window are
// suppressed.
func (m *Manager) DsegUpdate(peer RemotePeer) {
	now := m.cfg.AdjustedTime()

	m.mtx.Lock()
	if m.cfg.ChainParams.Net == wire.MainNet {
		if expiry, ok := m.weAskedForList[peer.Addr()]; ok &&
			expiry > now {

			m.mtx.Unlock()
			log.Debugf("Peer %s already asked for the list "+
				"recently", peer.Addr())
			return
		}
	}
	m.weAskedForList[peer.Addr()] = now + mnode.MasternodesDsegSeconds
	m.mtx.Unlock()

	peer.QueueMessage(mnwire.NewMsgDSeg(mnwire.ZeroOutPoint), nil)
}

// AskForMN requests a single masternode entry from a peer.  Repeat
// requests for the same outpoint inside the ping interval are suppressed.
func (m *Manager) AskForMN(peer RemotePeer, vin wire.OutPoint) {
	now := m.cfg.AdjustedTime()

	m.mtx.Lock()
	if expiry, ok := m.weAskedForVin[vin]; ok && expiry > now {
		m.mtx.Unlock()
		return
	}
	m.weAskedForVin[vin] = now + mnode.MasternodeMinMNPSeconds
	m.mtx.Unlock()

	log.Debugf("Asking peer %s for missing entry %s", peer.Addr(),
		vin.String())
	peer.QueueMessage(mnwire.NewMsgDSeg(vin), nil)
}

// SeenBroadcast returns the cached announcement with the given hash, or
// nil.  It serves getdata lookups.
func (m *Manager) SeenBroadcast(hash chainhash.Hash) *mnwire.MsgMNBroadcast {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return m.seenBroadcasts.Get(hash)
}

// SeenPing returns the cached ping with the given hash, or nil.  It
// serves getdata lookups.
func (m *Manager) SeenPing(hash chainhash.Hash) *mnwire.MsgMNPing {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return m.seenPings.Get(hash)
}
