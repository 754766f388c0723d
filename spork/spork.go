// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package spork

// Spork identifiers.  The numbering is shared with every deployed node on
// the network and must not change.
const (
	SporkStart int32 = 10001

	Spork5MaxValue                     int32 = 10004
	Spork7MasternodeScanning           int32 = 10006
	Spork8MasternodePaymentEnforcement int32 = 10007
	Spork9MasternodeBudgetEnforcement  int32 = 10008
	Spork10MasternodePayUpdatedNodes   int32 = 10009
	Spork13EnableSuperblocks           int32 = 10012
	Spork15NewProtocolEnforcement2     int32 = 10014
	Spork16ClientCompatMode            int32 = 10015

	SporkEnd int32 = 10016
)

// offByDefault is the far-future activation time (2099-01-01) that keeps
// a time-gated spork inactive until a signed update arrives.
const offByDefault int64 = 4070908800

// sporkDefaults is the value of each spork when no signed record has been
// received.
var sporkDefaults = map[int32]int64{
	Spork5MaxValue:                     1000,
	Spork7MasternodeScanning:           978307200,
	Spork8MasternodePaymentEnforcement: offByDefault,
	Spork9MasternodeBudgetEnforcement:  offByDefault,
	Spork10MasternodePayUpdatedNodes:   offByDefault,
	Spork13EnableSuperblocks:           offByDefault,
	Spork15NewProtocolEnforcement2:     offByDefault,
	Spork16ClientCompatMode:            offByDefault,
}

var sporkNames = map[int32]string{
	Spork5MaxValue:                     "SPORK_5_MAX_VALUE",
	Spork7MasternodeScanning:           "SPORK_7_MASTERNODE_SCANNING",
	Spork8MasternodePaymentEnforcement: "SPORK_8_MASTERNODE_PAYMENT_ENFORCEMENT",
	Spork9MasternodeBudgetEnforcement:  "SPORK_9_MASTERNODE_BUDGET_ENFORCEMENT",
	Spork10MasternodePayUpdatedNodes:   "SPORK_10_MASTERNODE_PAY_UPDATED_NODES",
	Spork13EnableSuperblocks:           "SPORK_13_ENABLE_SUPERBLOCKS",
	Spork15NewProtocolEnforcement2:     "SPORK_15_NEW_PROTOCOL_ENFORCEMENT_2",
	Spork16ClientCompatMode:            "SPORK_16_CLIENT_COMPAT_MODE",
}

// SporkNameByID returns the canonical name of a spork id, or "Unknown".
func SporkNameByID(id int32) string {
	if name, ok := sporkNames[id]; ok {
		return name
	}
	return "Unknown"
}

// SporkIDByName returns the spork id for a canonical name, or -1 when the
// name is not known.
func SporkIDByName(name string) int32 {
	for id, n := range sporkNames {
		if n == name {
			return id
		}
	}
	return -1
}

// DefaultValue returns the built-in value of a spork id, or -1 when the id
// is not known.
func DefaultValue(id int32) int64 {
	if v, ok := sporkDefaults[id]; ok {
		return v
	}
	return -1
}
