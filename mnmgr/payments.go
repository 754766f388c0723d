// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnmgr

import (
	"math/big"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/mergesuite/merged/mnode"
	"github.com/mergesuite/merged/spork"
)

const (
	// scoreBlockDepth is how far below the payment height the block hash
	// used for scoring is taken.  The offset keeps the scoring hash
	// final long before the payment block is produced.
	scoreBlockDepth = 100

	// winnerAgePerNodeSeconds scales the minimum announcement age of a
	// payment candidate with the size of the network.  A fresh entry
	// waits roughly one full payment cycle, at 2.6 minutes per enabled
	// node, before its first win.
	winnerAgePerNodeSeconds = 156

	// RankUnknown is the rank reported when the block hash for a height
	// is not known or the entry is absent from the ranking.
	RankUnknown = -1

	// rankScoreDisabled is the sentinel score assigned to entries that
	// are not enabled when the full ranking is built.  It is far below
	// any compact score, so disabled entries sort to the bottom in a
	// deterministic order.
	rankScoreDisabled = 9999
)

// RankedMasternode pairs an entry copy with its payment rank.
type RankedMasternode struct {
	Rank       int
	Masternode mnode.Masternode
}

// scoreHash returns the block hash the scores for the given payment
// height are derived from.
func (m *Manager) scoreHash(height int32) (*chainhash.Hash, error) {
	return m.cfg.BlockHash(height - scoreBlockDepth)
}

// paymentEligible reports whether an entry may enter the payment queue
// for a block.  The caller must hold the registry lock.
func (m *Manager) paymentEligible(mn *mnode.Masternode, now int64,
	enabled int, filterSigTime bool) bool {

	if !mn.IsEnabled() {
		return false
	}
	if mn.ProtocolVersion < m.cfg.MinProtocolVersion {
		return false
	}

	// Skip entries already queued for an upcoming block so one entry
	// cannot win twice in close succession.
	if m.cfg.IsScheduled != nil {
		script, err := m.cfg.Signer.PayeeScript(mn.PubKeyCollateral)
		if err == nil && m.cfg.IsScheduled(script) {
			return false
		}
	}

	// Fresh entries wait out roughly a full payment cycle before their
	// first win.
	if filterSigTime &&
		mn.SigTime+int64(enabled)*winnerAgePerNodeSeconds > now {
		return false
	}

	// The collateral must have been buried at least as deep as the
	// network is wide.
	utxo, err := m.cfg.FetchUtxo(mn.Vin)
	if err != nil || utxo == nil || utxo.Confirmations < int64(enabled) {
		return false
	}

	return true
}

// NextInQueueForPayment returns a copy of the entry that should be paid
// at the given block height, or nil when no entry is eligible.
//
// The queue orders entries by how long they have gone unpaid, restricts
// the choice to the longest-unpaid tenth of the network, and breaks the
// tie inside that decile with the entry's score against the block hash
// one hundred blocks below the payment height.  Entries announced too
// recently are filtered out first; when that filter would empty more
// than two thirds of the queue it is lifted so a young network can still
// schedule payments.
func (m *Manager) NextInQueueForPayment(height int32) *mnode.Masternode {
	return m.nextInQueue(height, true)
}

func (m *Manager) nextInQueue(height int32, filterSigTime bool) *mnode.Masternode {
	now := m.cfg.AdjustedTime()
	unspent := m.collateralChecker()

	m.mtx.Lock()

	type candidate struct {
		mn         *mnode.Masternode
		secondsAgo int64
	}
	var candidates []candidate

	enabled := m.countEnabled(-1)
	for _, mn := range m.nodes {
		mn.Check(now, unspent, false)
		if !m.paymentEligible(mn, now, enabled, filterSigTime) {
			continue
		}
		candidates = append(candidates, candidate{
			mn:         mn,
			secondsAgo: mn.SecondsSincePayment(now),
		})
	}

	if filterSigTime && len(candidates) < enabled/3 {
		m.mtx.Unlock()
		return m.nextInQueue(height, false)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].secondsAgo > candidates[j].secondsAgo
	})

	decile := enabled / 10
	if decile < 1 {
		decile = 1
	}
	if decile > len(candidates) {
		decile = len(candidates)
	}

	hash, err := m.scoreHash(height)
	if err != nil {
		m.mtx.Unlock()
		log.Debugf("No score hash for height %d: %v", height, err)
		return nil
	}

	var best *mnode.Masternode
	bestScore := new(big.Int)
	for _, c := range candidates[:decile] {
		score := c.mn.CalculateScore(1, *hash)
		if score.Cmp(bestScore) > 0 {
			bestScore = score
			best = c.mn
		}
	}
	if best == nil {
		m.mtx.Unlock()
		return nil
	}

	cp := *best
	m.mtx.Unlock()
	return &cp
}

// CurrentMasternode returns a copy of the enabled entry with the highest
// compact score against the current tip, or nil when the registry holds
// no enabled entries.
func (m *Manager) CurrentMasternode() *mnode.Masternode {
	hash, err := m.cfg.BlockHash(m.cfg.BestHeight())
	if err != nil {
		return nil
	}

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	var best *mnode.Masternode
	bestScore := int64(-1)
	for _, mn := range m.nodes {
		if !mn.IsEnabled() {
			continue
		}
		score := mnode.CompactScore(mn.CalculateScore(1, *hash))
		if score > bestScore {
			bestScore = score
			best = mn
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

// rankList builds the entries for a block height sorted by descending
// compact score.  Ties keep registry insertion order, so every node with
// the same registry contents derives the same ranking.  With onlyActive
// set, entries that are not enabled are dropped and, while payment
// enforcement is active, so are entries younger than the winner minimum
// age; with sentinelDisabled set all entries are kept but the ones that
// are not enabled are scored with rankScoreDisabled so they land at the
// bottom.  The caller must hold the registry lock.
func (m *Manager) rankList(hash *chainhash.Hash, minProtocol int32,
	now int64, onlyActive, sentinelDisabled bool) []*mnode.Masternode {

	ageGate := onlyActive && m.cfg.SporkActive(
		spork.Spork8MasternodePaymentEnforcement)

	type scored struct {
		mn    *mnode.Masternode
		score int64
	}
	var entries []scored
	for _, mn := range m.nodes {
		if mn.ProtocolVersion < minProtocol {
			continue
		}
		if onlyActive && !mn.IsEnabled() {
			continue
		}
		if ageGate && now-mn.SigTime < mnode.MNWinnerMinimumAge {
			continue
		}
		score := int64(rankScoreDisabled)
		if !sentinelDisabled || mn.IsEnabled() {
			score = mnode.CompactScore(mn.CalculateScore(1, *hash))
		}
		entries = append(entries, scored{mn: mn, score: score})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	list := make([]*mnode.Masternode, len(entries))
	for i, e := range entries {
		list[i] = e.mn
	}
	return list
}

// Rank returns the 1-based payment rank of the entry with the given
// collateral outpoint at a block height, or RankUnknown when the block
// hash is not known or the entry is absent from the ranking.  With
// onlyActive set, entries that are not enabled do not rank.
func (m *Manager) Rank(vin wire.OutPoint, height int32, minProtocol int32,
	onlyActive bool) int {

	hash, err := m.cfg.BlockHash(height)
	if err != nil {
		return RankUnknown
	}
	now := m.cfg.AdjustedTime()

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	for i, mn := range m.rankList(hash, minProtocol, now, onlyActive,
		false) {

		if mn.Vin == vin {
			return i + 1
		}
	}
	return RankUnknown
}

// ByRank returns a copy of the entry at the given 1-based payment rank
// for a block height, or nil when the rank is out of range or the block
// hash is not known.
func (m *Manager) ByRank(rank int, height int32, minProtocol int32,
	onlyActive bool) *mnode.Masternode {

	hash, err := m.cfg.BlockHash(height)
	if err != nil {
		return nil
	}
	now := m.cfg.AdjustedTime()

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	list := m.rankList(hash, minProtocol, now, onlyActive, false)
	if rank < 1 || rank > len(list) {
		return nil
	}
	cp := *list[rank-1]
	return &cp
}

// Ranks returns the full ranking for a block height as entry copies
// paired with their 1-based ranks.  Entries that are not enabled are
// included with the sentinel score, below every enabled entry.
func (m *Manager) Ranks(height int32, minProtocol int32) []RankedMasternode {
	hash, err := m.cfg.BlockHash(height)
	if err != nil {
		return nil
	}
	now := m.cfg.AdjustedTime()

	m.mtx.RLock()
	defer m.mtx.RUnlock()

	list := m.rankList(hash, minProtocol, now, false, true)
	ranked := make([]RankedMasternode, len(list))
	for i, mn := range list {
		ranked[i] = RankedMasternode{Rank: i + 1, Masternode: *mn}
	}
	return ranked
}
