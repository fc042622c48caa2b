// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package multisig

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/BoostyLabs/walletengine/wallet"
)

// PoolBalance sums balances across the entire address pool. Funds may sit
// at any pool address, so a single-address query would under-report.
func (c *Coordinator) PoolBalance(ctx context.Context, chain wallet.ChainSource,
	account *wallet.MultisigAccount) (btcutil.Amount, error) {
	var total btcutil.Amount
	for _, record := range account.Addresses {
		balance, err := chain.GetBalance(ctx, record.Address)
		if err != nil {
			return 0, fmt.Errorf("%w: balance of %s: %v", wallet.ErrNetworkFailure, record.Address, err)
		}

		total += balance
	}

	return total, nil
}

// PoolUTXOs collects spendable outputs across the entire address pool,
// stamping each with the derivation path and witness material of its
// pool record so inputs can later be signed.
func (c *Coordinator) PoolUTXOs(ctx context.Context, chain wallet.ChainSource,
	account *wallet.MultisigAccount) ([]wallet.UTXO, error) {
	var utxos []wallet.UTXO
	for _, record := range account.Addresses {
		found, err := chain.GetUTXOs(ctx, record.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: utxos of %s: %v", wallet.ErrNetworkFailure, record.Address, err)
		}

		for _, utxo := range found {
			utxo.Address = record.Address
			utxo.DerivationPath = record.DerivationPath
			utxos = append(utxos, utxo)
		}
	}

	return utxos, nil
}

// PoolTransactions lists transactions touching any pool address, marking
// touched records as used.
func (c *Coordinator) PoolTransactions(ctx context.Context, chain wallet.ChainSource,
	account *wallet.MultisigAccount) ([]wallet.TxRecord, error) {
	var (
		seen    = make(map[string]struct{})
		records []wallet.TxRecord
	)
	for _, record := range account.Addresses {
		txs, err := chain.GetTransactions(ctx, record.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: transactions of %s: %v", wallet.ErrNetworkFailure, record.Address, err)
		}

		if len(txs) > 0 {
			record.Used = true
		}

		for _, tx := range txs {
			if _, ok := seen[tx.TxID]; ok {
				continue
			}

			seen[tx.TxID] = struct{}{}
			records = append(records, tx)
		}
	}

	return records, nil
}
