// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
)

// ChainSource is the consumed blockchain data collaborator. It is treated
// as a stateless data source: results are not cached beyond one call and
// retries/backoff belong to the implementation, not to the engine.
type ChainSource interface {
	GetUTXOs(ctx context.Context, address string) ([]UTXO, error)
	GetTransactions(ctx context.Context, address string) ([]TxRecord, error)
	GetBalance(ctx context.Context, address string) (btcutil.Amount, error)
	BroadcastTransaction(ctx context.Context, txHex string) (string, error)
	GetFeeEstimates(ctx context.Context) (FeeEstimates, error)
}

// SecretStore is the consumed persistence collaborator. Values cross this
// boundary already encrypted; the engine never hands it plaintext secrets.
type SecretStore interface {
	Get(ctx context.Context, walletID string) ([]byte, error)
	Set(ctx context.Context, walletID string, ciphertext []byte) error
}

// TxRecord describes one transaction touching an address, as reported by
// the chain collaborator.
type TxRecord struct {
	TxID          string
	Confirmations int64
}

// FeeEstimates describes fee rates in satoshi per virtual byte per
// confirmation target.
type FeeEstimates struct {
	Fast   btcutil.Amount
	Normal btcutil.Amount
	Slow   btcutil.Amount
}
