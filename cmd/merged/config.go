// Copyright (c) 2025-2026 The mergesuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "merged.conf"
	defaultLogFilename    = "merged.log"
	defaultLogLevel       = "info"
	defaultMainNetPort    = 9947
	defaultRPCServer      = "localhost:8334"

	// defaultCollateral is the collateral an entry must lock, in coins.
	defaultCollateral = 10000

	// defaultMinProtocolVersion is the lowest announcement protocol
	// version admitted to the registry.
	defaultMinProtocolVersion = 70919

	// defaultSporkPubKey is the network spork authority key.
	defaultSporkPubKey = "04a983220ea7a38a7106385003fef77896538a3" +
		"82a65135b4ee71b35620b8147eadf2f2d135642092a4f92d98bf68cdb" +
		"811a9bb0ff2fdab92ecd0ac92f1bcdca3"
)

var (
	defaultHomeDir    = btcutil.AppDataDir("merged", false)
	defaultConfigFile = filepath.Join(defaultHomeDir,
		defaultConfigFilename)
	defaultLogDir = filepath.Join(defaultHomeDir, "logs")
)

// config defines the configuration options for merged.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	TestNet     bool   `long:"testnet" description:"Use the test network"`
	SimNet      bool   `long:"simnet" description:"Use the simulation test network"`
	RPCServer   string `long:"rpcserver" description:"Chain RPC server to connect to"`
	RPCUser     string `short:"u" long:"rpcuser" description:"Chain RPC username"`
	RPCPassword string `short:"P" long:"rpcpass" default-mask:"-" description:"Chain RPC password"`
	RPCCert     string `long:"rpccert" description:"Chain RPC server certificate chain for validation"`
	NoTLS       bool   `long:"notls" description:"Disable TLS for the chain RPC connection"`
	SporkKey    string `long:"sporkkey" description:"WIF secret enabling spork updates"`
	BanBadSigs  bool   `long:"banbadsporksigs" description:"Penalize peers that relay sporks with invalid signatures"`
}

// activeParams returns the chain parameters selected by the network
// flags.
func (c *config) activeParams() *chaincfg.Params {
	switch {
	case c.SimNet:
		return &chaincfg.SimNetParams
	case c.TestNet:
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// sporkPubKey decodes the configured spork authority key.
func (c *config) sporkPubKey() ([]byte, error) {
	return hex.DecodeString(defaultSporkPubKey)
}

// loadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func loadConfig() (*config, []string, error) {
	cfg := config{
		ConfigFile: defaultConfigFile,
		LogDir:     defaultLogDir,
		DebugLevel: defaultLogLevel,
		RPCServer:  defaultRPCServer,
	}

	// Pre-parse the command line options to see if an alternative config
	// file was specified.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok &&
			e.Type == flags.ErrHelp {

			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	if preCfg.ShowVersion {
		fmt.Println("merged version", version())
		os.Exit(0)
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintf(os.Stderr, "Error parsing config file: "+
				"%v\n", err)
			return nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	if cfg.TestNet && cfg.SimNet {
		err := fmt.Errorf("the testnet and simnet params can't be " +
			"used together")
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	if !validLogLevel(cfg.DebugLevel) {
		err := fmt.Errorf("the specified debug level [%v] is "+
			"invalid", cfg.DebugLevel)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
