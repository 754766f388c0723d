// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package spork implements the signed network-control channel.  A spork is
a (id, value, timeSigned) triple signed by a network-wide key; the most
recently signed value per id wins, and ids without a signed record fall
back to hard-coded defaults.  Most sporks encode an activation timestamp,
so "active" means the value lies in the past.
*/
package spork
