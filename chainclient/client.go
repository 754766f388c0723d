// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainclient

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"

	"github.com/mergesuite/merged/mnsign"
)

// Client wraps an RPC connection to a chain daemon and exposes the chain
// views the registry needs.
type Client struct {
	rpc *rpcclient.Client
}

// New returns a client for the chain daemon described by connCfg.  The
// transport, HTTP POST or websocket, follows connCfg.HTTPPostMode.
func New(connCfg *rpcclient.ConnConfig) (*Client, error) {
	rpc, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: rpc}, nil
}

// BestHeight returns the height of the chain tip, or -1 when the daemon
// cannot be reached.
func (c *Client) BestHeight() int32 {
	count, err := c.rpc.GetBlockCount()
	if err != nil {
		log.Debugf("GetBlockCount: %v", err)
		return -1
	}
	return int32(count)
}

// BlockHash returns the main chain block hash at the given height.
func (c *Client) BlockHash(height int32) (*chainhash.Hash, error) {
	return c.rpc.GetBlockHash(int64(height))
}

// BlockHeight returns the main chain height of the given block hash.  An
// error is returned for unknown blocks and for blocks not in the main
// chain.
func (c *Client) BlockHeight(hash *chainhash.Hash) (int32, error) {
	header, err := c.rpc.GetBlockHeaderVerbose(hash)
	if err != nil {
		return 0, err
	}
	return header.Height, nil
}

// FetchUtxo looks up an unspent transaction output.  A nil result with a
// nil error means the output is spent or unknown.
func (c *Client) FetchUtxo(op wire.OutPoint) (*mnsign.Utxo, error) {
	result, err := c.rpc.GetTxOut(&op.Hash, op.Index, true)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	value, err := btcutil.NewAmount(result.Value)
	if err != nil {
		return nil, err
	}
	pkScript, err := hex.DecodeString(result.ScriptPubKey.Hex)
	if err != nil {
		return nil, err
	}

	return &mnsign.Utxo{
		Value:         value,
		PkScript:      pkScript,
		Confirmations: result.Confirmations,
	}, nil
}

// Shutdown closes the RPC connection.
func (c *Client) Shutdown() {
	c.rpc.Shutdown()
	c.rpc.WaitForShutdown()
}
