// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnsign

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// DefaultMessageMagic is the prefix mixed into every signed overlay
// message so signatures cannot be replayed as transaction signatures.
const DefaultMessageMagic = "Merge Signed Message:\n"

// ErrBadSignature is returned when a signature does not verify against
// the expected public key.
var ErrBadSignature = errors.New("signature does not match public key")

// Utxo describes an unspent collateral output.
type Utxo struct {
	Value         btcutil.Amount
	PkScript      []byte
	Confirmations int64
}

// UtxoFetcher looks up an unspent output.  A nil result with a nil error
// means the output is spent or unknown.
type UtxoFetcher func(wire.OutPoint) (*Utxo, error)

// Signer signs and verifies overlay messages using recoverable compact
// ECDSA over the network's signed-message magic.
type Signer struct {
	// Params identifies the network, which scopes WIF decoding and
	// address derivation.
	Params *chaincfg.Params

	// MessageMagic is the signed-message prefix.  Defaults to
	// DefaultMessageMagic when empty.
	MessageMagic string
}

// NewSigner returns a signer for the given network.
func NewSigner(params *chaincfg.Params) *Signer {
	return &Signer{Params: params, MessageMagic: DefaultMessageMagic}
}

// messageHash produces the digest that is actually signed: the double
// SHA-256 of the var-string encoded magic followed by the var-string
// encoded message.
func (s *Signer) messageHash(msg string) []byte {
	magic := s.MessageMagic
	if magic == "" {
		magic = DefaultMessageMagic
	}
	var buf bytes.Buffer
	_ = wire.WriteVarString(&buf, 0, magic)
	_ = wire.WriteVarString(&buf, 0, msg)
	return chainhash.DoubleHashB(buf.Bytes())
}

// KeysFromSecret decodes a WIF-encoded secret into a keypair.
func (s *Signer) KeysFromSecret(secret string) (*btcec.PrivateKey, *btcec.PublicKey, error) {
	wif, err := btcutil.DecodeWIF(secret)
	if err != nil {
		return nil, nil, err
	}
	if !wif.IsForNet(s.Params) {
		return nil, nil, fmt.Errorf("key is not for network %s",
			s.Params.Name)
	}
	return wif.PrivKey, wif.PrivKey.PubKey(), nil
}

// SignMessage signs msg with the given key and returns the recoverable
// compact signature.
func (s *Signer) SignMessage(msg string, key *btcec.PrivateKey) ([]byte, error) {
	return ecdsa.SignCompact(key, s.messageHash(msg), true), nil
}

// VerifyMessage checks that sig is a valid signature of msg by the
// serialized public key.
func (s *Signer) VerifyMessage(pubKey, sig []byte, msg string) error {
	expected, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return err
	}
	recovered, _, err := ecdsa.RecoverCompact(sig, s.messageHash(msg))
	if err != nil {
		return err
	}
	if !recovered.IsEqual(expected) {
		return ErrBadSignature
	}
	return nil
}

// PayeeScript returns the pay-to-pubkey-hash script paying the address of
// the serialized public key.  It is the script a masternode's collateral
// must be locked to and the script its rewards are paid to.
func (s *Signer) PayeeScript(pubKey []byte) ([]byte, error) {
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pubKey),
		s.Params)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(addr)
}

// IsVinAssociatedWithPubkey reports whether the collateral outpoint is an
// unspent output of the required amount locked to the address of pubKey.
// The lookup is expensive, so callers run it once per masternode at
// admission time.
func (s *Signer) IsVinAssociatedWithPubkey(fetch UtxoFetcher, vin wire.OutPoint,
	pubKey []byte, collateral btcutil.Amount) bool {

	utxo, err := fetch(vin)
	if err != nil || utxo == nil {
		return false
	}
	if utxo.Value != collateral {
		return false
	}
	script, err := s.PayeeScript(pubKey)
	if err != nil {
		return false
	}
	return bytes.Equal(script, utxo.PkScript)
}
