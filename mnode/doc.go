// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mnode defines the masternode entry type, its liveness state
machine, and the per-block score arithmetic used to order entries for
payment.
*/
package mnode
