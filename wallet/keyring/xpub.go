// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package keyring

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/BoostyLabs/walletengine/wallet"
)

// ExportAccountXpub derives the account-level node for the path and
// returns its neutered, network-tagged base58 serialization. The change
// and index segments of the path are ignored.
func ExportAccountXpub(session *wallet.Session, path DerivationPath) (string, error) {
	account, err := AccountNode(session, path)
	if err != nil {
		return "", err
	}

	neutered, err := account.Neuter()
	if err != nil {
		return "", fmt.Errorf("neuter account node: %w", err)
	}

	return neutered.String(), nil
}

// ParseXpub decodes an extended public key and validates it against the
// network. Private extended keys are rejected: cosigners must never share
// private material.
func ParseXpub(raw string, networkParams *chaincfg.Params) (*hdkeychain.ExtendedKey, error) {
	key, err := hdkeychain.NewKeyFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode xpub: %v", wallet.ErrInvalidInput, err)
	}

	if key.IsPrivate() {
		return nil, fmt.Errorf("%w: extended private key where xpub expected", wallet.ErrInvalidInput)
	}
	if !key.IsForNet(networkParams) {
		return nil, fmt.Errorf("%w: xpub is tagged for another network", wallet.ErrInvalidInput)
	}

	return key, nil
}

// Fingerprint returns the hex-encoded 4-byte identifier of an extended
// key: the first bytes of HASH160 over its compressed public key.
func Fingerprint(key *hdkeychain.ExtendedKey) (string, error) {
	pub, err := key.ECPubKey()
	if err != nil {
		return "", fmt.Errorf("extract public key: %w", err)
	}

	return hex.EncodeToString(btcutil.Hash160(pub.SerializeCompressed())[:4]), nil
}
