// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package multisig

import (
	"fmt"

	"github.com/BoostyLabs/walletengine/internal/log"
	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/keyring"
)

// EnsureAddressPool idempotently extends both chains of the account pool
// so that gapLimit addresses exist beyond each chain's next-unissued
// cursor. Existing entries are never removed or regenerated.
func (c *Coordinator) EnsureAddressPool(account *wallet.MultisigAccount, gapLimit uint32) error {
	if err := c.ensureChain(account, keyring.ChainExternal, account.ExternalIndex+gapLimit); err != nil {
		return err
	}

	return c.ensureChain(account, keyring.ChainInternal, account.InternalIndex+gapLimit)
}

func (c *Coordinator) ensureChain(account *wallet.MultisigAccount, chain, target uint32) error {
	isChange := chain == keyring.ChainInternal

	for index := uint32(0); index < target; index++ {
		if account.RecordAt(index, isChange) != nil {
			continue
		}

		record, err := c.addressAt(account, chain, index)
		if err != nil {
			return err
		}

		if err := account.AddRecord(record); err != nil {
			return err
		}
	}

	return nil
}

// VerifyPool regenerates every pool address from the cosigner keys and
// compares it against the stored record. Run at unlock: a mismatch means
// the stored pool no longer matches the cosigner set and spending from it
// would be unsafe.
func (c *Coordinator) VerifyPool(account *wallet.MultisigAccount) error {
	for _, record := range account.Addresses {
		chain := keyring.ChainExternal
		if record.IsChange {
			chain = keyring.ChainInternal
		}

		regenerated, err := c.addressAt(account, chain, record.Index)
		if err != nil {
			return err
		}

		if regenerated.Address != record.Address {
			return fmt.Errorf("%w: pool address %d (change: %t) does not regenerate",
				wallet.ErrConfigMismatch, record.Index, record.IsChange)
		}
	}

	log.Multisig.Debug().
		Uint32("account", account.Index).
		Int("pool_size", len(account.Addresses)).
		Msg("address pool verified")

	return nil
}

// ReceiveAddress returns the current receiving address of the account:
// the pool entry at the external cursor. Repeated calls without an
// observed payment return the same address.
func (c *Coordinator) ReceiveAddress(account *wallet.MultisigAccount) (*wallet.AddressRecord, error) {
	if err := c.EnsureAddressPool(account, c.cfg.GapLimit); err != nil {
		return nil, err
	}

	record := account.RecordAt(account.ExternalIndex, false)
	if record == nil {
		return nil, fmt.Errorf("%w: pool is missing external index %d",
			wallet.ErrConfigMismatch, account.ExternalIndex)
	}

	return record, nil
}

// NextInternalAddress reserves the next change address from the pool,
// advancing the internal cursor by exactly one. Implements
// privacy.PoolAllocator.
func (c *Coordinator) NextInternalAddress(account *wallet.MultisigAccount) (*wallet.AddressRecord, error) {
	index := account.ReserveInternalIndex()

	if err := c.EnsureAddressPool(account, c.cfg.GapLimit); err != nil {
		return nil, err
	}

	record := account.RecordAt(index, true)
	if record == nil {
		return nil, fmt.Errorf("%w: pool is missing internal index %d", wallet.ErrConfigMismatch, index)
	}

	return record, nil
}

// MarkUsed flags the pool record holding the address and advances the
// external cursor past it when needed, keeping the pool filled to the gap
// limit beyond the new cursor.
func (c *Coordinator) MarkUsed(account *wallet.MultisigAccount, address string) error {
	for _, record := range account.Addresses {
		if record.Address != address {
			continue
		}

		record.Used = true
		if !record.IsChange && account.ExternalIndex <= record.Index {
			account.ExternalIndex = record.Index + 1
		}

		return c.EnsureAddressPool(account, c.cfg.GapLimit)
	}

	return fmt.Errorf("%w: address %s is not in the pool", wallet.ErrInvalidInput, address)
}
