// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnwire

import (
	"github.com/btcsuite/btcd/wire"
)

// Inventory type extensions for the masternode overlay.  The numbering
// continues the legacy inventory enum shared with wallets and other
// implementations on the network, so the values must not be renumbered.
const (
	// InvTypeSpork indicates the inventory vector refers to a signed
	// spork message.
	InvTypeSpork wire.InvType = 6

	// InvTypeMasternodeAnnounce indicates the inventory vector refers to
	// a masternode broadcast.
	InvTypeMasternodeAnnounce wire.InvType = 14

	// InvTypeMasternodePing indicates the inventory vector refers to a
	// masternode ping.
	InvTypeMasternodePing wire.InvType = 15
)

// Masternode list sync item identifiers carried by ssc messages.
const (
	SyncItemInitial int32 = 0
	SyncItemSporks  int32 = 1
	SyncItemList    int32 = 2
	SyncItemWinners int32 = 3

	SyncItemFailed   int32 = 998
	SyncItemFinished int32 = 999
)
