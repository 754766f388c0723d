// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mnmgr implements the masternode registry: admission of signed
announcements and pings, liveness maintenance, list synchronization with
peers, and the deterministic payment queue and rank calculations derived
from the registry contents.
*/
package mnmgr
