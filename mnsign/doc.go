// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mnsign implements the message signing scheme shared by masternode
announcements, pings, and sporks: recoverable compact ECDSA over a
magic-prefixed double SHA-256 digest, with key material carried as WIF
secrets.  Verification recovers the signing public key and compares it
with the expected key; collateral ownership is checked against the
pay-to-pubkey-hash script of the collateral key.
*/
package mnsign
