// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package privacy enforces the engine's address-hygiene rules: single-use
// change addresses and non-wrapping contact address rotation.
package privacy

import (
	"fmt"

	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/addressgen"
	"github.com/BoostyLabs/walletengine/wallet/keyring"
)

// PoolAllocator reserves the next internal-chain address of a multisig
// account. Implemented by the multisig coordinator.
type PoolAllocator interface {
	NextInternalAddress(account *wallet.MultisigAccount) (*wallet.AddressRecord, error)
}

// ChangeAllocator issues exactly one fresh internal-chain address per
// outgoing transaction. The internal index advances by exactly one per
// call and is never reused: a failure after reserving burns the index
// rather than reissuing a previously handed-out address.
type ChangeAllocator struct {
	cfg       wallet.Config
	generator *addressgen.Generator
	pool      PoolAllocator
}

// NewChangeAllocator is a constructor for ChangeAllocator. pool may be nil
// when multisig accounts are not in play.
func NewChangeAllocator(cfg wallet.Config, pool PoolAllocator) *ChangeAllocator {
	return &ChangeAllocator{
		cfg:       cfg,
		generator: addressgen.NewGenerator(cfg.NetworkParams),
		pool:      pool,
	}
}

// NextChangeAddress reserves and generates the change address for one
// transaction. Failure is terminal for the send: the caller must abort
// rather than fall back to any previously issued address.
func (a *ChangeAllocator) NextChangeAddress(session *wallet.Session, account wallet.Account) (*wallet.AddressRecord, error) {
	switch acct := account.(type) {
	case *wallet.HDAccount:
		return a.deriveChange(session, acct)

	case *wallet.ImportedSeedAccount:
		return a.deriveChange(session, &acct.HDAccount)

	case *wallet.MultisigAccount:
		if a.pool == nil {
			return nil, fmt.Errorf("%w: no pool allocator configured", wallet.ErrConfigMismatch)
		}

		return a.pool.NextInternalAddress(acct)

	case *wallet.ImportedKeyAccount:
		// Single-key accounts cannot derive children; change returns to
		// the imported address itself. Reuse here is inherent to the
		// account kind, not an allocator fallback.
		if acct.Record == nil {
			return nil, fmt.Errorf("%w: imported account has no address record", wallet.ErrInvalidInput)
		}

		return acct.Record, nil

	default:
		return nil, fmt.Errorf("%w: unsupported account kind %T", wallet.ErrInvalidInput, account)
	}
}

func (a *ChangeAllocator) deriveChange(session *wallet.Session, account *wallet.HDAccount) (*wallet.AddressRecord, error) {
	// Reserve before deriving so the index is burned even when the
	// remainder of this call fails.
	index := account.ReserveInternalIndex()

	path, err := keyring.SingleSigPath(account.Type, a.cfg.CoinType, account.Index, keyring.ChainInternal, index)
	if err != nil {
		return nil, err
	}

	node, err := keyring.DeriveNode(session, path)
	if err != nil {
		return nil, err
	}

	publicKey, err := node.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("extract public key: %w", err)
	}

	record, err := a.generator.Record(publicKey, account.Type, path.String(), index, true)
	if err != nil {
		return nil, err
	}

	if err := account.AddRecord(record); err != nil {
		return nil, err
	}

	return record, nil
}
