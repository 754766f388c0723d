// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/rpcclient"

	"github.com/mergesuite/merged/chainclient"
	"github.com/mergesuite/merged/mnmgr"
	"github.com/mergesuite/merged/mnsign"
	"github.com/mergesuite/merged/spork"
)

// maintenanceInterval is how often the registry liveness pass runs.
const maintenanceInterval = 5 * time.Second

// mergedMain is the real main function for merged.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit()
// is called.
func mergedMain() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize logging and setup deferred flushing to ensure all
	// outstanding messages are written on shutdown.
	initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	defer logRotator.Close()
	setLogLevels(cfg.DebugLevel)

	// Get a channel that will be closed when a shutdown signal has been
	// triggered from an OS signal such as SIGINT (Ctrl+C).
	interrupt := interruptListener()
	defer mrgdLog.Info("Shutdown complete")

	mrgdLog.Infof("Version %s", version())

	params := cfg.activeParams()

	var certs []byte
	if !cfg.NoTLS && cfg.RPCCert != "" {
		certs, err = os.ReadFile(cfg.RPCCert)
		if err != nil {
			return err
		}
	}
	chain, err := chainclient.New(&rpcclient.ConnConfig{
		Host:         cfg.RPCServer,
		User:         cfg.RPCUser,
		Pass:         cfg.RPCPassword,
		Certificates: certs,
		DisableTLS:   cfg.NoTLS,
		HTTPPostMode: true,
	})
	if err != nil {
		return err
	}
	defer chain.Shutdown()

	signer := mnsign.NewSigner(params)
	adjustedTime := func() int64 { return time.Now().Unix() }

	sporkPubKey, err := cfg.sporkPubKey()
	if err != nil {
		return err
	}
	sporks := spork.New(spork.Config{
		SporkPubKey:  sporkPubKey,
		Signer:       signer,
		BestHeight:   chain.BestHeight,
		AdjustedTime: adjustedTime,
		BanBadSigs:   cfg.BanBadSigs,
	})
	if cfg.SporkKey != "" {
		if err := sporks.SetPrivKey(cfg.SporkKey); err != nil {
			return err
		}
	}

	collateral, err := btcutil.NewAmount(defaultCollateral)
	if err != nil {
		return err
	}
	registry := mnmgr.New(mnmgr.Config{
		ChainParams:        params,
		Signer:             signer,
		FetchUtxo:          chain.FetchUtxo,
		CollateralAmount:   collateral,
		MinProtocolVersion: defaultMinProtocolVersion,
		DefaultPort:        defaultMainNetPort,
		BestHeight:         chain.BestHeight,
		BlockHeight:        chain.BlockHeight,
		BlockHash:          chain.BlockHash,
		AdjustedTime:       adjustedTime,
		IsSynced: func() bool {
			return chain.BestHeight() > 0
		},
		SporkActive: sporks.IsActive,
		ListUpdated: func() {},
	})

	mrgdLog.Infof("Masternode registry started on %s", params.Name)

	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

out:
	for {
		select {
		case <-ticker.C:
			registry.CheckAndRemove(false)
			mrgdLog.Tracef("%s", registry.String())
		case <-interrupt:
			break out
		}
	}

	return nil
}

// version returns the application version as a properly formed string.
func version() string {
	return fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
}

// Application version numbers.
const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

func main() {
	if err := mergedMain(); err != nil {
		os.Exit(1)
	}
}
