// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package chainclient adapts a chain RPC connection to the narrow chain
views the registry and spork packages need: tip height, block hash and
height lookups, and collateral utxo checks.
*/
package chainclient
