// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package keyring

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/BoostyLabs/walletengine/wallet"
)

// ImportWIF decodes and validates a WIF private key against the network.
func ImportWIF(raw string, networkParams *chaincfg.Params) (*btcutil.WIF, error) {
	wif, err := btcutil.DecodeWIF(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode wif: %v", wallet.ErrInvalidInput, err)
	}

	if !wif.IsForNet(networkParams) {
		return nil, fmt.Errorf("%w: wif is tagged for another network", wallet.ErrInvalidInput)
	}

	return wif, nil
}

// ExportWIF encodes a private key as a compressed, network-tagged WIF.
func ExportWIF(privateKey *btcec.PrivateKey, networkParams *chaincfg.Params) (string, error) {
	wif, err := btcutil.NewWIF(privateKey, networkParams, true)
	if err != nil {
		return "", fmt.Errorf("encode wif: %w", err)
	}

	return wif.String(), nil
}
