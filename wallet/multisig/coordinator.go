// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package multisig manages cosigner extended public keys, M-of-N account
// lifecycle and the deterministic address pools shared by all cosigners.
package multisig

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/BoostyLabs/walletengine/internal/log"
	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/addressgen"
	"github.com/BoostyLabs/walletengine/wallet/keyring"
)

// Coordinator provides multisig account coordination for one wallet.
type Coordinator struct {
	cfg       wallet.Config
	generator *addressgen.Generator
}

// NewCoordinator is a constructor for Coordinator.
func NewCoordinator(cfg wallet.Config) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		generator: addressgen.NewGenerator(cfg.NetworkParams),
	}
}

// ExportXpub derives the wallet's account-level extended public key for
// sharing with cosigners, together with its fingerprint.
func (c *Coordinator) ExportXpub(session *wallet.Session, scriptType wallet.MultisigScriptType,
	accountIndex uint32) (xpub, fingerprint string, err error) {
	path, err := keyring.MultisigPath(scriptType, c.cfg.CoinType, accountIndex, keyring.ChainExternal, 0)
	if err != nil {
		return "", "", err
	}

	xpub, err = keyring.ExportAccountXpub(session, path)
	if err != nil {
		return "", "", err
	}

	key, err := keyring.ParseXpub(xpub, c.cfg.NetworkParams)
	if err != nil {
		return "", "", err
	}

	fingerprint, err = keyring.Fingerprint(key)
	if err != nil {
		return "", "", err
	}

	return xpub, fingerprint, nil
}

// ImportCosignerXpub validates a cosigner's extended public key and
// computes its fingerprint.
func (c *Coordinator) ImportCosignerXpub(raw, name string) (wallet.Cosigner, error) {
	key, err := keyring.ParseXpub(raw, c.cfg.NetworkParams)
	if err != nil {
		return wallet.Cosigner{}, err
	}

	fingerprint, err := keyring.Fingerprint(key)
	if err != nil {
		return wallet.Cosigner{}, err
	}

	return wallet.Cosigner{
		Xpub:        raw,
		Fingerprint: fingerprint,
		Name:        name,
	}, nil
}

// CreateAccount assembles an M-of-N account from the external cosigners
// plus the wallet's own key and pre-populates its address pool to the gap
// limit. A cosigner carrying the wallet's own fingerprint is rejected:
// listing the wallet as its own cosigner silently weakens the threshold.
func (c *Coordinator) CreateAccount(session *wallet.Session, name string, accountIndex uint32,
	m, n int, scriptType wallet.MultisigScriptType, cosigners []wallet.Cosigner) (*wallet.MultisigAccount, error) {
	if m < 1 || m > n {
		return nil, fmt.Errorf("%w: %d-of-%d", wallet.ErrConfigMismatch, m, n)
	}
	if len(cosigners)+1 != n {
		return nil, fmt.Errorf("%w: %d cosigners plus our key for %d-of-%d",
			wallet.ErrConfigMismatch, len(cosigners), m, n)
	}

	ourXpub, ourFingerprint, err := c.ExportXpub(session, scriptType, accountIndex)
	if err != nil {
		return nil, err
	}

	for _, cosigner := range cosigners {
		if cosigner.Fingerprint == ourFingerprint {
			return nil, fmt.Errorf("%w: cosigner %q carries the wallet's own fingerprint %s",
				wallet.ErrConfigMismatch, cosigner.Name, ourFingerprint)
		}
	}

	all := make([]wallet.Cosigner, 0, n)
	all = append(all, wallet.Cosigner{
		Xpub:        ourXpub,
		Fingerprint: ourFingerprint,
		Name:        name,
		IsSelf:      true,
	})
	all = append(all, cosigners...)

	account := &wallet.MultisigAccount{
		Index:      accountIndex,
		Name:       name,
		M:          m,
		N:          n,
		ScriptType: scriptType,
		Cosigners:  all,
	}

	if err := c.EnsureAddressPool(account, c.cfg.GapLimit); err != nil {
		return nil, err
	}

	log.Multisig.Info().
		Str("account", name).
		Int("m", m).
		Int("n", n).
		Str("script_type", string(scriptType)).
		Msg("multisig account created")

	return account, nil
}

// cosignerKeysAt derives every cosigner's public key at chain/index.
func (c *Coordinator) cosignerKeysAt(account *wallet.MultisigAccount, chain, index uint32) ([]*btcec.PublicKey, error) {
	keys := make([]*btcec.PublicKey, 0, len(account.Cosigners))
	for _, cosigner := range account.Cosigners {
		accountKey, err := keyring.ParseXpub(cosigner.Xpub, c.cfg.NetworkParams)
		if err != nil {
			return nil, fmt.Errorf("cosigner %q: %w", cosigner.Name, err)
		}

		node, err := keyring.DeriveChild(accountKey, chain, index)
		if err != nil {
			return nil, fmt.Errorf("cosigner %q at %d/%d: %w", cosigner.Name, chain, index, err)
		}

		publicKey, err := node.ECPubKey()
		if err != nil {
			return nil, fmt.Errorf("cosigner %q: extract public key: %w", cosigner.Name, err)
		}

		keys = append(keys, publicKey)
	}

	return keys, nil
}

// addressAt builds the pool address record for one chain/index.
func (c *Coordinator) addressAt(account *wallet.MultisigAccount, chain, index uint32) (*wallet.AddressRecord, error) {
	keys, err := c.cosignerKeysAt(account, chain, index)
	if err != nil {
		return nil, err
	}

	path, err := keyring.MultisigPath(account.ScriptType, c.cfg.CoinType, account.Index, chain, index)
	if err != nil {
		return nil, err
	}

	return c.generator.GenerateMultisig(keys, account.M, account.ScriptType,
		path.String(), index, chain == keyring.ChainInternal)
}
