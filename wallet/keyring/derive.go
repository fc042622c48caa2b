// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package keyring

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"

	"github.com/BoostyLabs/walletengine/wallet"
)

// maxHardenedIndex defines the largest usable child index (2^31 - 1).
const maxHardenedIndex = hdkeychain.HardenedKeyStart - 1

// DeriveNode walks the BIP32 tree from the session's master key down to
// the full path. Pure function of the seed and path: identical inputs
// always yield identical nodes. Fails with wallet.ErrWalletLocked when no
// key material is resident.
func DeriveNode(session *wallet.Session, path DerivationPath) (*hdkeychain.ExtendedKey, error) {
	account, err := AccountNode(session, path)
	if err != nil {
		return nil, err
	}

	return deriveChain(account, path.Change, path.Index)
}

// AccountNode derives the hardened account-level node
// (m/purpose'/coin'/account' plus the script branch for BIP48 paths)
// without generating any addresses.
func AccountNode(session *wallet.Session, path DerivationPath) (*hdkeychain.ExtendedKey, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}

	master, err := session.Master()
	if err != nil {
		return nil, err
	}

	segments := []uint32{
		hdkeychain.HardenedKeyStart + path.Purpose,
		hdkeychain.HardenedKeyStart + path.Coin,
		hdkeychain.HardenedKeyStart + path.Account,
	}
	if path.Purpose == PurposeMultisig {
		segments = append(segments, hdkeychain.HardenedKeyStart+path.ScriptBranch)
	}

	node := master
	for _, segment := range segments {
		node, err = node.Derive(segment)
		if err != nil {
			return nil, fmt.Errorf("derive account node %s: %w", path, err)
		}
	}

	return node, nil
}

// deriveChain extends an account-level node with the non-hardened
// change and index segments.
func deriveChain(account *hdkeychain.ExtendedKey, change, index uint32) (*hdkeychain.ExtendedKey, error) {
	chain, err := account.Derive(change)
	if err != nil {
		return nil, fmt.Errorf("derive chain %d: %w", change, err)
	}

	node, err := chain.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("derive index %d: %w", index, err)
	}

	return node, nil
}

// DeriveChild extends a neutered or private account node with
// change/index segments. Used for cosigner xpub trees where no session
// is involved.
func DeriveChild(account *hdkeychain.ExtendedKey, change, index uint32) (*hdkeychain.ExtendedKey, error) {
	return deriveChain(account, change, index)
}
