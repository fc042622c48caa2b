// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// DefaultGapLimit defines the BIP44 gap limit for address discovery
	// and multisig pool maintenance.
	DefaultGapLimit uint32 = 20

	// CoinTypeBitcoin defines the SLIP-0044 coin type for mainnet.
	CoinTypeBitcoin uint32 = 0
	// CoinTypeTestnet defines the SLIP-0044 coin type for test networks.
	CoinTypeTestnet uint32 = 1
)

// Config holds engine-wide parameters shared by all components.
type Config struct {
	NetworkParams *chaincfg.Params
	CoinType      uint32
	GapLimit      uint32
}

// NewConfig is a constructor for Config with the coin type and gap limit
// matching the provided network.
func NewConfig(networkParams *chaincfg.Params) Config {
	coinType := CoinTypeTestnet
	if networkParams.Net == chaincfg.MainNetParams.Net {
		coinType = CoinTypeBitcoin
	}

	return Config{
		NetworkParams: networkParams,
		CoinType:      coinType,
		GapLimit:      DefaultGapLimit,
	}
}
