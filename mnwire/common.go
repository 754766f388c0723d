// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnwire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	// MaxSignatureSize is the maximum serialized size of a recoverable
	// compact ECDSA signature.
	MaxSignatureSize = 72

	// MaxPubKeySize is the maximum serialized size of a secp256k1 public
	// key (uncompressed form).
	MaxPubKeySize = 65
)

// messageError creates an error for the given function and description in
// the same form the wire package uses.
func messageError(f string, desc string) error {
	return fmt.Errorf("%v: %v", f, desc)
}

func readInt32(r io.Reader, v *int32) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	*v = int32(binary.LittleEndian.Uint32(buf[:]))
	return nil
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader, v *int64) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	*v = int64(binary.LittleEndian.Uint64(buf[:]))
	return nil
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

// readOutPoint reads the encoded version of an outpoint from r.
func readOutPoint(r io.Reader, op *wire.OutPoint) error {
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return err
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	op.Index = binary.LittleEndian.Uint32(buf[:])
	return nil
}

// writeOutPoint serializes op to w as a 32-byte hash followed by a 4-byte
// little-endian output index.
func writeOutPoint(w io.Writer, op *wire.OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], op.Index)
	_, err := w.Write(buf[:])
	return err
}

// readSig reads a variable length signature while enforcing the maximum
// signature size.
func readSig(r io.Reader, pver uint32, fieldName string) ([]byte, error) {
	return wire.ReadVarBytes(r, pver, MaxSignatureSize, fieldName)
}

// readPubKey reads a variable length serialized public key while enforcing
// the maximum public key size.
func readPubKey(r io.Reader, pver uint32, fieldName string) ([]byte, error) {
	return wire.ReadVarBytes(r, pver, MaxPubKeySize, fieldName)
}

// ZeroOutPoint is the empty outpoint used by dseg requests that ask for the
// full masternode list.  It follows the null-prevout convention: an
// all-zero hash with a maximal index.
var ZeroOutPoint = wire.OutPoint{Index: wire.MaxPrevOutIndex}

// IsZeroOutPoint returns whether the passed outpoint is the empty outpoint.
func IsZeroOutPoint(op wire.OutPoint) bool {
	return op.Index == wire.MaxPrevOutIndex && op.Hash == chainhash.Hash{}
}
