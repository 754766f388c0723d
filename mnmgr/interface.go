// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnmgr

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/mergesuite/merged/mnsign"
	"github.com/mergesuite/merged/mnwire"
)

// RemotePeer is the subset of peer behavior the registry needs to answer
// sync requests and penalize misbehavior.
type RemotePeer interface {
	// ID returns the peer's unique id.
	ID() int32

	// Addr returns the peer's address in host:port form.  It keys the
	// per-peer request throttles.
	Addr() string

	// NA returns the peer's advertised service address.
	NA() *mnwire.ServiceAddress

	// QueueMessage adds a message to the peer's send queue.  A nil done
	// channel is allowed.
	QueueMessage(msg wire.Message, doneChan chan<- struct{})

	// QueueInventory adds an inventory vector to the peer's batched
	// inventory send queue.
	QueueInventory(invVect *wire.InvVect)

	// AddBanScore increases the peer's misbehavior score.
	AddBanScore(persistent, transient uint32, reason string)
}

// Config is the registry configuration.
//
// All function fields must be non-nil unless noted otherwise.
type Config struct {
	// ChainParams identifies the network.
	ChainParams *chaincfg.Params

	// Signer verifies announcement and ping signatures.
	Signer *mnsign.Signer

	// FetchUtxo looks up an unspent output for collateral checks.
	FetchUtxo mnsign.UtxoFetcher

	// CollateralAmount is the exact value a collateral output must hold.
	CollateralAmount btcutil.Amount

	// MinProtocolVersion is the lowest announcement protocol version the
	// registry admits.
	MinProtocolVersion int32

	// DefaultPort is the port masternodes must listen on for the main
	// network.  Off-mainnet networks reject this port instead.
	DefaultPort uint16

	// BestHeight returns the height of the current chain tip, or -1 when
	// the chain is not yet available.
	BestHeight func() int32

	// BlockHeight returns the main-chain height of a block hash.  It
	// returns an error when the hash is not in the main chain.
	BlockHeight func(*chainhash.Hash) (int32, error)

	// BlockHash returns the main-chain block hash at a height.
	BlockHash func(int32) (*chainhash.Hash, error)

	// AdjustedTime returns the network-adjusted current time as a unix
	// timestamp.
	AdjustedTime func() int64

	// IsSynced reports whether initial blockchain and masternode list
	// sync has completed.  Network messages are ignored before then.
	IsSynced func() bool

	// SporkActive reports whether a spork id is currently active.
	SporkActive func(sporkID int32) bool

	// RelayInventory relays an accepted announcement or ping to
	// connected peers.  It may be nil, in which case nothing is relayed.
	RelayInventory func(invVect *wire.InvVect)

	// IsScheduled reports whether an entry's payee script appears in the
	// upcoming payment schedule.  It may be nil, in which case no entry
	// is considered scheduled.
	IsScheduled func(payeeScript []byte) bool

	// ListUpdated is called after any change to the registry contents,
	// and when gossip re-confirms an announcement already seen.  Sync
	// coordinators use it to measure masternode list progress.  It may
	// be nil.
	ListUpdated func()
}
