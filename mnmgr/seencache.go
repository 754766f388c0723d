// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mnmgr

import (
	"container/list"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/mergesuite/merged/mnode"
	"github.com/mergesuite/merged/mnwire"
)

// seenRetentionSeconds is how long a seen broadcast or ping hash remains
// answerable after its signature time.  Twice the removal window keeps
// records around long enough to dampen re-gossip of anything that could
// still circulate.
const seenRetentionSeconds = 2 * mnode.MasternodeRemovalSeconds

// broadcastCache is a bounded map of announcement hashes to the full
// announcements, held to answer getdata requests and to dedupe gossip.
// When the limit is reached the least recently added entry is evicted,
// and Sweep drops entries whose signature time has aged out.
type broadcastCache struct {
	limit   int
	entries map[chainhash.Hash]*mnwire.MsgMNBroadcast
	order   *list.List
}

func newBroadcastCache(limit int) *broadcastCache {
	return &broadcastCache{
		limit:   limit,
		entries: make(map[chainhash.Hash]*mnwire.MsgMNBroadcast),
		order:   list.New(),
	}
}

// Exists reports whether the hash is cached.
func (c *broadcastCache) Exists(hash chainhash.Hash) bool {
	_, ok := c.entries[hash]
	return ok
}

// Get returns the cached announcement for the hash, or nil.
func (c *broadcastCache) Get(hash chainhash.Hash) *mnwire.MsgMNBroadcast {
	return c.entries[hash]
}

// Add caches an announcement by its hash, evicting the oldest entry when
// the cache is full.
func (c *broadcastCache) Add(mnb *mnwire.MsgMNBroadcast) {
	hash := mnb.Hash()
	if _, ok := c.entries[hash]; ok {
		c.entries[hash] = mnb
		return
	}
	if c.order.Len()+1 > c.limit {
		front := c.order.Front()
		oldest := front.Value.(chainhash.Hash)
		delete(c.entries, oldest)
		front.Value = hash
		c.order.MoveToBack(front)
	} else {
		c.order.PushBack(hash)
	}
	c.entries[hash] = mnb
}

// Sweep removes entries whose embedded ping has aged past the retention
// window relative to now.  The ping time, not the announcement time, is
// what goes stale while an entry stays alive.
func (c *broadcastCache) Sweep(now int64) {
	for e := c.order.Front(); e != nil; {
		next := e.Next()
		hash := e.Value.(chainhash.Hash)
		if mnb, ok := c.entries[hash]; ok &&
			mnb.LastPing.SigTime < now-seenRetentionSeconds {

			delete(c.entries, hash)
			c.order.Remove(e)
		}
		e = next
	}
}

// RemoveVin drops every cached announcement for a collateral outpoint.
func (c *broadcastCache) RemoveVin(vin wire.OutPoint) {
	for e := c.order.Front(); e != nil; {
		next := e.Next()
		hash := e.Value.(chainhash.Hash)
		if mnb, ok := c.entries[hash]; ok && mnb.Vin == vin {
			delete(c.entries, hash)
			c.order.Remove(e)
		}
		e = next
	}
}

// Len returns the number of cached announcements.
func (c *broadcastCache) Len() int {
	return len(c.entries)
}

// pingCache is the ping counterpart of broadcastCache.
type pingCache struct {
	limit   int
	entries map[chainhash.Hash]*mnwire.MsgMNPing
	order   *list.List
}

func newPingCache(limit int) *pingCache {
	return &pingCache{
		limit:   limit,
		entries: make(map[chainhash.Hash]*mnwire.MsgMNPing),
		order:   list.New(),
	}
}

// Exists reports whether the hash is cached.
func (c *pingCache) Exists(hash chainhash.Hash) bool {
	_, ok := c.entries[hash]
	return ok
}

// Get returns the cached ping for the hash, or nil.
func (c *pingCache) Get(hash chainhash.Hash) *mnwire.MsgMNPing {
	return c.entries[hash]
}

// Add caches a ping by its hash, evicting the oldest entry when the
// cache is full.
func (c *pingCache) Add(mnp *mnwire.MsgMNPing) {
	hash := mnp.Hash()
	if _, ok := c.entries[hash]; ok {
		c.entries[hash] = mnp
		return
	}
	if c.order.Len()+1 > c.limit {
		front := c.order.Front()
		oldest := front.Value.(chainhash.Hash)
		delete(c.entries, oldest)
		front.Value = hash
		c.order.MoveToBack(front)
	} else {
		c.order.PushBack(hash)
	}
	c.entries[hash] = mnp
}

// Sweep removes entries whose signature time is older than the retention
// window relative to now.
func (c *pingCache) Sweep(now int64) {
	for e := c.order.Front(); e != nil; {
		next := e.Next()
		hash := e.Value.(chainhash.Hash)
		if mnp, ok := c.entries[hash]; ok &&
			mnp.SigTime < now-seenRetentionSeconds {

			delete(c.entries, hash)
			c.order.Remove(e)
		}
		e = next
	}
}

// Len returns the number of cached pings.
func (c *pingCache) Len() int {
	return len(c.entries)
}
