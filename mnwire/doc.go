// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mnwire implements the masternode overlay protocol messages.

The overlay rides on the standard peer-to-peer protocol implemented by the
wire package and adds the messages used to announce masternodes (mnb), keep
them alive (mnp), request the registry from a peer (dseg), report list sync
progress (ssc), and distribute signed network flags (spork, getsporks).
Every message implements the wire.Message interface so it can be queued on a
peer like any other protocol message.
*/
package mnwire
