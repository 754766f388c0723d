// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnmgr

import (
	"fmt"
)

// ErrorCode identifies a kind of rejection.
type ErrorCode int

const (
	// ErrTimeTooFar indicates a message carried a signature time too far
	// in the future.
	ErrTimeTooFar ErrorCode = iota

	// ErrTimeTooOld indicates a message carried a signature time too far
	// in the past.
	ErrTimeTooOld

	// ErrBadSignature indicates a signature that does not verify against
	// the message's public key.
	ErrBadSignature

	// ErrObsoleteVersion indicates an announcement with a protocol
	// version below the required minimum.
	ErrObsoleteVersion

	// ErrBadPort indicates an announcement whose port does not match the
	// network's required port.
	ErrBadPort

	// ErrCollateralMismatch indicates the announced collateral outpoint
	// is not an unspent output of the required amount locked to the
	// announcement's collateral key.
	ErrCollateralMismatch

	// ErrCollateralUnspendable indicates the announced collateral output
	// is spent, missing, or of the wrong amount.
	ErrCollateralUnspendable

	// ErrCollateralImmature indicates the collateral output exists but
	// has too few confirmations.
	ErrCollateralImmature

	// ErrUnknownBlock indicates a ping referenced a block hash that is
	// not in the chain.
	ErrUnknownBlock

	// ErrStaleBlock indicates a ping referenced a block deeper in the
	// chain than allowed.
	ErrStaleBlock
)

var errorCodeStrings = map[ErrorCode]string{
	ErrTimeTooFar:            "ErrTimeTooFar",
	ErrTimeTooOld:            "ErrTimeTooOld",
	ErrBadSignature:          "ErrBadSignature",
	ErrObsoleteVersion:       "ErrObsoleteVersion",
	ErrBadPort:               "ErrBadPort",
	ErrCollateralMismatch:    "ErrCollateralMismatch",
	ErrCollateralUnspendable: "ErrCollateralUnspendable",
	ErrCollateralImmature:    "ErrCollateralImmature",
	ErrUnknownBlock:          "ErrUnknownBlock",
	ErrStaleBlock:            "ErrStaleBlock",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rejected message along with the misbehavior
// score the sending peer earns for it.  A BanScore of zero means the
// message is dropped without penalty.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
	BanScore    uint32
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, score uint32, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc, BanScore: score}
}
