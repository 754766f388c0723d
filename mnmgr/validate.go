// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnmgr

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"

	"github.com/mergesuite/merged/mnode"
	"github.com/mergesuite/merged/mnwire"
)

const (
	// maxFutureSkewSeconds is how far into the future a signature time
	// may lie before the message is rejected.
	maxFutureSkewSeconds = 60 * 60

	// maxPingAgeSeconds is how far into the past a ping signature time
	// may lie before the ping is rejected.
	maxPingAgeSeconds = 60 * 60

	// maxPingBlockDepth is how deep the referenced block of a ping may be
	// below the tip before the ping is considered stale.
	maxPingBlockDepth = 24
)

// checkBroadcast validates an announcement against the clock, the
// required protocol version, the network port, and its signature, then
// applies it to any existing registry entry.  It returns true when the
// caller should continue to the collateral check and admission, false
// when the announcement has been fully handled (updated an existing
// entry or was a no-op).  A RuleError is returned for rejections.
func (m *Manager) checkBroadcast(mnb *mnwire.MsgMNBroadcast) (bool, error) {
	now := m.cfg.AdjustedTime()

	if mnb.SigTime > now+maxFutureSkewSeconds {
		return false, ruleError(ErrTimeTooFar, 1, fmt.Sprintf(
			"announcement %s signed %d seconds in the future",
			mnb.Vin.String(), mnb.SigTime-now))
	}

	if mnb.ProtocolVersion < m.cfg.MinProtocolVersion {
		return false, ruleError(ErrObsoleteVersion, 0, fmt.Sprintf(
			"announcement %s uses obsolete protocol version %d",
			mnb.Vin.String(), mnb.ProtocolVersion))
	}

	err := m.cfg.Signer.VerifyMessage(mnb.PubKeyCollateral, mnb.Sig,
		mnb.SignaturePayload())
	if err != nil {
		return false, ruleError(ErrBadSignature, 100, fmt.Sprintf(
			"announcement %s has invalid signature: %v",
			mnb.Vin.String(), err))
	}

	onMainNet := m.cfg.ChainParams.Net == wire.MainNet
	if onMainNet && mnb.Addr.Port != m.cfg.DefaultPort {
		return false, ruleError(ErrBadPort, 0, fmt.Sprintf(
			"announcement %s advertises port %d, want %d",
			mnb.Vin.String(), mnb.Addr.Port, m.cfg.DefaultPort))
	}
	if !onMainNet && mnb.Addr.Port == m.cfg.DefaultPort {
		return false, ruleError(ErrBadPort, 0, fmt.Sprintf(
			"announcement %s advertises main network port %d",
			mnb.Vin.String(), mnb.Addr.Port))
	}

	m.mtx.Lock()
	mn := m.findByVin(mnb.Vin)
	if mn == nil {
		m.mtx.Unlock()
		return true, nil
	}

	// The entry is known.  Only a strictly newer announcement outside
	// the re-announce damping window updates it.
	if mn.SigTime >= mnb.SigTime ||
		mn.IsBroadcastedWithin(mnode.MasternodeMinMNBSeconds, now) {

		m.mtx.Unlock()
		return false, nil
	}

	mn.UpdateFromBroadcast(mnb)
	m.mtx.Unlock()

	m.notifyListUpdated()

	if m.cfg.RelayInventory != nil {
		hash := mnb.Hash()
		m.cfg.RelayInventory(wire.NewInvVect(
			mnwire.InvTypeMasternodeAnnounce, &hash))
	}
	return false, nil
}

// checkInputsAndAdd verifies the collateral behind an announcement and
// admits the new entry.  The collateral output must be unspent, hold the
// exact collateral amount, and be buried under enough confirmations.
func (m *Manager) checkInputsAndAdd(mnb *mnwire.MsgMNBroadcast) error {
	utxo, err := m.cfg.FetchUtxo(mnb.Vin)
	if err != nil {
		return err
	}
	if utxo == nil || utxo.Value != m.cfg.CollateralAmount {
		return ruleError(ErrCollateralUnspendable, 0, fmt.Sprintf(
			"announcement %s collateral is spent or not %s",
			mnb.Vin.String(), m.cfg.CollateralAmount))
	}

	if utxo.Confirmations < mnode.MasternodeMinConfirmations {
		// The output may simply be young, so no penalty.  The operator
		// re-announces once the collateral matures.
		return ruleError(ErrCollateralImmature, 0, fmt.Sprintf(
			"announcement %s collateral has %d confirmations, "+
				"need %d", mnb.Vin.String(),
			utxo.Confirmations,
			mnode.MasternodeMinConfirmations))
	}

	log.Debugf("Got new masternode entry %s %s", mnb.Vin.String(),
		mnb.Addr.String())

	mn := mnode.NewMasternodeFromBroadcast(mnb)
	if !m.Add(mn) {
		return nil
	}

	if m.cfg.RelayInventory != nil {
		hash := mnb.Hash()
		m.cfg.RelayInventory(wire.NewInvVect(
			mnwire.InvTypeMasternodeAnnounce, &hash))
	}
	return nil
}

// checkPing validates a ping against the clock, its signature, and the
// chain, then applies it to the registry entry it targets.  It returns
// true when the target entry is unknown and should be requested from the
// sending peer.
func (m *Manager) checkPing(mnp *mnwire.MsgMNPing) (bool, error) {
	now := m.cfg.AdjustedTime()

	if mnp.SigTime > now+maxFutureSkewSeconds {
		return false, ruleError(ErrTimeTooFar, 1, fmt.Sprintf(
			"ping %s signed %d seconds in the future",
			mnp.Vin.String(), mnp.SigTime-now))
	}
	if mnp.SigTime <= now-maxPingAgeSeconds {
		return false, ruleError(ErrTimeTooOld, 1, fmt.Sprintf(
			"ping %s signed %d seconds in the past",
			mnp.Vin.String(), now-mnp.SigTime))
	}

	m.mtx.Lock()
	mn := m.findByVin(mnp.Vin)
	if mn == nil {
		m.mtx.Unlock()
		return true, nil
	}
	if mn.ProtocolVersion < m.cfg.MinProtocolVersion {
		m.mtx.Unlock()
		return false, nil
	}

	// Drop pings inside the damping window.  The window is shortened by
	// a minute of grace so marginally early pings from slow clocks are
	// not lost.
	if mn.LastPing.SigTime+mnode.MasternodeMinMNPSeconds-60 >
		mnp.SigTime {

		m.mtx.Unlock()
		return false, nil
	}
	operatorKey := mn.PubKeyMasternode
	m.mtx.Unlock()

	err := m.cfg.Signer.VerifyMessage(operatorKey, mnp.Sig,
		mnp.SignaturePayload())
	if err != nil {
		return false, ruleError(ErrBadSignature, 33, fmt.Sprintf(
			"ping %s has invalid signature: %v",
			mnp.Vin.String(), err))
	}

	height, err := m.cfg.BlockHeight(&mnp.BlockHash)
	if err != nil {
		// The block may not have propagated to us yet.  Drop the
		// ping without prejudice.
		log.Debugf("Ping %s references unknown block %s",
			mnp.Vin.String(), mnp.BlockHash.String())
		return false, ruleError(ErrUnknownBlock, 0, fmt.Sprintf(
			"ping %s references unknown block %s",
			mnp.Vin.String(), mnp.BlockHash.String()))
	}
	if height < m.cfg.BestHeight()-maxPingBlockDepth {
		return false, ruleError(ErrStaleBlock, 33, fmt.Sprintf(
			"ping %s references block %s at height %d, too deep",
			mnp.Vin.String(), mnp.BlockHash.String(), height))
	}

	m.mtx.Lock()
	// Revalidate under the lock, the entry may have changed.
	mn = m.findByVin(mnp.Vin)
	if mn == nil {
		m.mtx.Unlock()
		return true, nil
	}
	mn.LastPing = *mnp

	// Refresh the embedded ping of any cached announcement for this
	// entry so the announcement served to syncing peers stays fresh.
	bcastHash := mn.Broadcast().Hash()
	if cached := m.seenBroadcasts.Get(bcastHash); cached != nil {
		cached.LastPing = *mnp
	}

	mn.Check(now, m.collateralChecker(), true)
	m.mtx.Unlock()

	m.notifyListUpdated()

	if m.cfg.RelayInventory != nil {
		hash := mnp.Hash()
		m.cfg.RelayInventory(wire.NewInvVect(
			mnwire.InvTypeMasternodePing, &hash))
	}
	return false, nil
}
