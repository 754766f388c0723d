// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnmgr

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/mergesuite/merged/mnode"
	"github.com/mergesuite/merged/mnsign"
	"github.com/mergesuite/merged/mnwire"
)

const (
	testProtocolVersion = 70919
	testPort            = 9947
	testCollateral      = btcutil.Amount(10000 * btcutil.SatoshiPerBitcoin)
)

// testRemotePeer implements RemotePeer and records everything sent to it.
type testRemotePeer struct {
	addr     string
	na       mnwire.ServiceAddress
	banScore uint32
	queued   []wire.Message
	invs     []*wire.InvVect
}

func newTestRemotePeer(host string) *testRemotePeer {
	return &testRemotePeer{
		addr: net.JoinHostPort(host, "9947"),
		na:   mnwire.NewServiceAddress(net.ParseIP(host), 9947),
	}
}

func (p *testRemotePeer) ID() int32    { return 1 }
func (p *testRemotePeer) Addr() string { return p.addr }

func (p *testRemotePeer) NA() *mnwire.ServiceAddress { return &p.na }

func (p *testRemotePeer) QueueMessage(msg wire.Message, done chan<- struct{}) {
	p.queued = append(p.queued, msg)
}

func (p *testRemotePeer) QueueInventory(iv *wire.InvVect) {
	p.invs = append(p.invs, iv)
}

func (p *testRemotePeer) AddBanScore(persistent, transient uint32, reason string) {
	p.banScore += persistent + transient
}

// testKeys is one masternode identity: a collateral keypair and an
// operator keypair.
type testKeys struct {
	collateralPriv *btcec.PrivateKey
	collateralPub  []byte
	operatorPriv   *btcec.PrivateKey
	operatorPub    []byte
}

func newTestKeys(t *testing.T) *testKeys {
	t.Helper()

	cPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	oPriv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return &testKeys{
		collateralPriv: cPriv,
		collateralPub:  cPriv.PubKey().SerializeCompressed(),
		operatorPriv:   oPriv,
		operatorPub:    oPriv.PubKey().SerializeCompressed(),
	}
}

// testHarness wires a registry to fake chain and clock state.
type testHarness struct {
	t      *testing.T
	mgr    *Manager
	signer *mnsign.Signer

	now       int64
	height    int32
	utxos     map[wire.OutPoint]*mnsign.Utxo
	heights   map[chainhash.Hash]int32
	sporks    map[int32]bool
	relayed   int
	listDirty int
}

// blockHashAt derives a deterministic block hash for a height.
func blockHashAt(height int32) chainhash.Hash {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(height))
	return chainhash.DoubleHashH(buf[:])
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	h := &testHarness{
		t:       t,
		signer:  mnsign.NewSigner(&chaincfg.MainNetParams),
		now:     1700000000,
		height:  2000,
		utxos:   make(map[wire.OutPoint]*mnsign.Utxo),
		heights: make(map[chainhash.Hash]int32),
		sporks:  make(map[int32]bool),
	}
	h.mgr = New(Config{
		ChainParams:        &chaincfg.MainNetParams,
		Signer:             h.signer,
		FetchUtxo:          h.fetchUtxo,
		CollateralAmount:   testCollateral,
		MinProtocolVersion: testProtocolVersion,
		DefaultPort:        testPort,
		BestHeight:         func() int32 { return h.height },
		BlockHeight:        h.blockHeight,
		BlockHash: func(height int32) (*chainhash.Hash, error) {
			hash := blockHashAt(height)
			return &hash, nil
		},
		AdjustedTime: func() int64 { return h.now },
		IsSynced:     func() bool { return true },
		SporkActive:  func(id int32) bool { return h.sporks[id] },
		RelayInventory: func(iv *wire.InvVect) {
			h.relayed++
		},
		ListUpdated: func() { h.listDirty++ },
	})
	return h
}

func (h *testHarness) fetchUtxo(op wire.OutPoint) (*mnsign.Utxo, error) {
	return h.utxos[op], nil
}

func (h *testHarness) blockHeight(hash *chainhash.Hash) (int32, error) {
	if height, ok := h.heights[*hash]; ok {
		return height, nil
	}
	return 0, errUnknownBlock
}

var errUnknownBlock = ruleError(ErrUnknownBlock, 0, "unknown block")

// tipHash registers the current tip hash so pings referencing it
// validate.
func (h *testHarness) tipHash() chainhash.Hash {
	hash := blockHashAt(h.height)
	h.heights[hash] = h.height
	return hash
}

// fundCollateral installs a mature collateral utxo for the keys and
// returns its outpoint.
func (h *testHarness) fundCollateral(keys *testKeys, index uint32) wire.OutPoint {
	h.t.Helper()

	script, err := h.signer.PayeeScript(keys.collateralPub)
	require.NoError(h.t, err)

	var hash chainhash.Hash
	hash[0] = byte(index + 1)
	op := wire.OutPoint{Hash: hash, Index: index}
	h.utxos[op] = &mnsign.Utxo{
		Value:         testCollateral,
		PkScript:      script,
		Confirmations: 100,
	}
	return op
}

// signedPing builds a valid ping for the entry signed by the operator
// key.
func (h *testHarness) signedPing(keys *testKeys, vin wire.OutPoint,
	sigTime int64) *mnwire.MsgMNPing {

	h.t.Helper()

	mnp := mnwire.NewMsgMNPing(vin, h.tipHash(), sigTime)
	sig, err := h.signer.SignMessage(mnp.SignaturePayload(),
		keys.operatorPriv)
	require.NoError(h.t, err)
	mnp.Sig = sig
	return mnp
}

// signedBroadcast builds a valid announcement signed by the collateral
// key, with an embedded ping at the same signing time.
func (h *testHarness) signedBroadcast(keys *testKeys, vin wire.OutPoint,
	host string, sigTime int64) *mnwire.MsgMNBroadcast {

	h.t.Helper()

	addr := mnwire.NewServiceAddress(net.ParseIP(host), testPort)
	mnb := mnwire.NewMsgMNBroadcast(vin, addr, keys.collateralPub,
		keys.operatorPub, sigTime, testProtocolVersion)
	sig, err := h.signer.SignMessage(mnb.SignaturePayload(),
		keys.collateralPriv)
	require.NoError(h.t, err)
	mnb.Sig = sig
	mnb.LastPing = *h.signedPing(keys, vin, sigTime)
	return mnb
}

// addEnabled admits an entry announced old enough to be payment eligible
// and pinged recently enough to be enabled.
func (h *testHarness) addEnabled(index uint32) (*testKeys, wire.OutPoint) {
	h.t.Helper()

	keys := newTestKeys(h.t)
	vin := h.fundCollateral(keys, index)

	mn := mnode.NewMasternodeFromBroadcast(h.signedBroadcast(keys, vin,
		"203.0.113.5", h.now-10000))
	mn.LastPing = *h.signedPing(keys, vin, h.now-60)
	mn.Check(h.now, func(wire.OutPoint) bool { return true }, true)
	require.True(h.t, mn.IsEnabled())
	require.True(h.t, h.mgr.Add(mn))
	return keys, vin
}
