// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spork

import (
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/mergesuite/merged/mnsign"
	"github.com/mergesuite/merged/mnwire"
)

// Peer is the subset of peer behavior the spork manager needs.  A nil done
// channel on QueueMessage is allowed.
type Peer interface {
	// ID returns the peer's unique id.
	ID() int32

	// QueueMessage adds a message to the peer's send queue.
	QueueMessage(msg wire.Message, doneChan chan<- struct{})

	// AddBanScore increases the peer's misbehavior score.
	AddBanScore(persistent, transient uint32, reason string)
}

// Config is the spork manager configuration.
//
// All function fields must be non-nil unless noted otherwise.
type Config struct {
	// SporkPubKey is the serialized public key that every accepted spork
	// must be signed by.
	SporkPubKey []byte

	// Signer verifies and, when a private key has been installed,
	// produces spork signatures.
	Signer *mnsign.Signer

	// BestHeight returns the height of the current chain tip, or -1 when
	// the chain is not yet available.  Sporks are not processed before
	// the chain reports a tip.
	BestHeight func() int32

	// AdjustedTime returns the network-adjusted current time as a unix
	// timestamp.
	AdjustedTime func() int64

	// RelayInventory relays an accepted spork to connected peers.  It
	// may be nil, in which case accepted sporks are not relayed.
	RelayInventory func(invVect *wire.InvVect)

	// BanBadSigs controls whether a spork with an invalid signature
	// penalizes the sending peer.  Invalid sporks are always rejected.
	BanBadSigs bool
}

// Manager tracks the active spork set and processes spork messages from
// the network.
type Manager struct {
	cfg Config

	mtx     sync.RWMutex
	active  map[int32]*mnwire.MsgSpork
	byHash  map[chainhash.Hash]*mnwire.MsgSpork
	privKey *btcec.PrivateKey
}

// New returns a spork manager with no received sporks.  Every spork id
// reports its built-in default until a signed update arrives.
func New(cfg Config) *Manager {
	return &Manager{
		cfg:    cfg,
		active: make(map[int32]*mnwire.MsgSpork),
		byHash: make(map[chainhash.Hash]*mnwire.MsgSpork),
	}
}

// ProcessSpork validates a received spork message and, when it is newer
// than the retained record for its id and correctly signed, installs and
// relays it.  The peer may be nil when the spork originates locally.
func (m *Manager) ProcessSpork(msg *mnwire.MsgSpork, peer Peer) error {
	if m.cfg.BestHeight() < 0 {
		return nil
	}

	hash := msg.Hash()

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if existing, ok := m.active[msg.SporkID]; ok {
		if existing.TimeSigned >= msg.TimeSigned {
			log.Tracef("Spork %d (%s) already have or newer, "+
				"skipping", msg.SporkID,
				SporkNameByID(msg.SporkID))
			return nil
		}
	}

	err := m.cfg.Signer.VerifyMessage(m.cfg.SporkPubKey, msg.Sig,
		msg.SignaturePayload())
	if err != nil {
		log.Debugf("Rejected spork %s: invalid signature: %v", hash,
			err)
		if peer != nil && m.cfg.BanBadSigs {
			peer.AddBanScore(100, 0, "invalid spork signature")
		}
		return fmt.Errorf("spork %d signature invalid: %w",
			msg.SporkID, err)
	}

	log.Infof("New spork %s id %d (%s) value %d", hash, msg.SporkID,
		SporkNameByID(msg.SporkID), msg.Value)

	m.active[msg.SporkID] = msg
	m.byHash[hash] = msg

	if m.cfg.RelayInventory != nil {
		m.cfg.RelayInventory(wire.NewInvVect(mnwire.InvTypeSpork,
			&hash))
	}
	return nil
}

// ProcessGetSporks queues every retained spork record to the requesting
// peer.
func (m *Manager) ProcessGetSporks(peer Peer) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	for _, spork := range m.active {
		peer.QueueMessage(spork, nil)
	}
}

// IsActive reports whether a spork is currently active.  A spork is
// active when its value is a past timestamp.  Values of -1 (unknown ids)
// and far-future timestamps are inactive.
func (m *Manager) IsActive(sporkID int32) bool {
	v := m.Value(sporkID)
	return v != -1 && v < m.cfg.AdjustedTime()
}

// Value returns the current value of a spork: the most recently signed
// value when one has been received, the built-in default otherwise, and
// -1 for unknown ids.
func (m *Manager) Value(sporkID int32) int64 {
	m.mtx.RLock()
	spork, ok := m.active[sporkID]
	m.mtx.RUnlock()

	if ok {
		return spork.Value
	}
	return DefaultValue(sporkID)
}

// GetByHash returns the retained spork record with the given hash, or nil
// when no such record is retained.  It serves getdata lookups.
func (m *Manager) GetByHash(hash *chainhash.Hash) *mnwire.MsgSpork {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return m.byHash[*hash]
}

// SetPrivKey installs the spork signing key after proving it can produce
// a signature that verifies against the configured spork public key.
func (m *Manager) SetPrivKey(secret string) error {
	priv, _, err := m.cfg.Signer.KeysFromSecret(secret)
	if err != nil {
		return err
	}

	test := &mnwire.MsgSpork{
		SporkID:    SporkStart,
		Value:      0,
		TimeSigned: m.cfg.AdjustedTime(),
	}
	test.Sig, err = m.cfg.Signer.SignMessage(test.SignaturePayload(),
		priv)
	if err != nil {
		return err
	}
	err = m.cfg.Signer.VerifyMessage(m.cfg.SporkPubKey, test.Sig,
		test.SignaturePayload())
	if err != nil {
		return fmt.Errorf("key does not match spork public key: %w",
			err)
	}

	m.mtx.Lock()
	m.privKey = priv
	m.mtx.Unlock()

	log.Info("Spork signing key installed")
	return nil
}

// UpdateSpork signs a new value for a spork id with the installed signing
// key and processes the result as if it had been received from the
// network, installing and relaying it.
func (m *Manager) UpdateSpork(sporkID int32, value int64) error {
	if SporkNameByID(sporkID) == "Unknown" {
		return fmt.Errorf("unknown spork id %d", sporkID)
	}

	m.mtx.RLock()
	priv := m.privKey
	m.mtx.RUnlock()

	if priv == nil {
		return fmt.Errorf("no spork signing key installed")
	}

	msg := &mnwire.MsgSpork{
		SporkID:    sporkID,
		Value:      value,
		TimeSigned: m.cfg.AdjustedTime(),
	}
	sig, err := m.cfg.Signer.SignMessage(msg.SignaturePayload(), priv)
	if err != nil {
		return err
	}
	msg.Sig = sig

	return m.ProcessSpork(msg, nil)
}
