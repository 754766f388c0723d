// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnode

import (
	"encoding/binary"
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// CalculateScore derives the 256-bit payment score of the entry for the
// given block hash and modifier.  The score is the absolute difference
// between the hash of the block and the hash of the block salted with the
// collateral outpoint, so every masternode gets an unpredictable but fully
// deterministic position per block.
func (mn *Masternode) CalculateScore(modifier int64, blockHash chainhash.Hash) *big.Int {
	aux := mn.scoreAux(modifier)

	hash2 := chainhash.DoubleHashB(blockHash[:])

	salted := make([]byte, 0, chainhash.HashSize*2)
	salted = append(salted, blockHash[:]...)
	salted = append(salted, aux...)
	hash3 := chainhash.DoubleHashB(salted)

	n2 := new(big.Int).SetBytes(hash2)
	n3 := new(big.Int).SetBytes(hash3)
	if n3.Cmp(n2) > 0 {
		return n3.Sub(n3, n2)
	}
	return n2.Sub(n2, n3)
}

// scoreAux hashes the collateral outpoint together with the modifier.
func (mn *Masternode) scoreAux(modifier int64) []byte {
	buf := make([]byte, 0, chainhash.HashSize+4+8)
	buf = append(buf, mn.Vin.Hash[:]...)
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], mn.Vin.Index)
	buf = append(buf, idx[:]...)
	var mod [8]byte
	binary.LittleEndian.PutUint64(mod[:], uint64(modifier))
	buf = append(buf, mod[:]...)
	return chainhash.DoubleHashB(buf)
}

// CompactScore projects a 256-bit score into the compact form used for
// rank comparison on the wire.  The projection is intentionally lossy:
// it matches how every deployed node compares ranks, so comparing the full
// 256-bit value instead would diverge from the network.
func CompactScore(score *big.Int) int64 {
	return int64(blockchain.BigToCompact(score))
}

// SecondsSincePayment returns how long ago the entry was last paid,
// counting from the announcement when no payment has been observed.
// Beyond thirty days the result degrades into a deterministic value
// derived from the entry identity, so long-unpaid entries keep a stable
// relative order instead of racing the clock.
func (mn *Masternode) SecondsSincePayment(now int64) int64 {
	base := mn.SigTime
	if mn.LastPaid > 0 {
		base = mn.LastPaid
	}
	sec := now - base

	const month = 60 * 60 * 24 * 30
	if sec < month {
		return sec
	}

	buf := make([]byte, 0, chainhash.HashSize+4+8)
	buf = append(buf, mn.Vin.Hash[:]...)
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], mn.Vin.Index)
	buf = append(buf, idx[:]...)
	var st [8]byte
	binary.LittleEndian.PutUint64(st[:], uint64(mn.SigTime))
	buf = append(buf, st[:]...)
	hash := chainhash.DoubleHashB(buf)

	return month + CompactScore(new(big.Int).SetBytes(hash))
}
