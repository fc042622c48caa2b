// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

var (
	// ErrWalletLocked defines that no key material is resident in the session.
	ErrWalletLocked = errors.New("wallet is locked")
	// ErrInvalidInput defines malformed caller input (mnemonic, WIF, xpub, address).
	ErrInvalidInput = errors.New("invalid input")
	// ErrNetworkFailure defines a failed chain collaborator call. Retries belong to the collaborator.
	ErrNetworkFailure = errors.New("network failure")
	// ErrInsufficientFunds defines that selected utxos do not cover outputs plus fee.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientSignatures defines that a psbt input has fewer signatures than the threshold.
	ErrInsufficientSignatures = errors.New("insufficient signatures")
	// ErrCacheExhausted defines that a contact address cache has no unissued addresses left.
	ErrCacheExhausted = errors.New("address cache exhausted")
	// ErrDuplicateKey defines a duplicate (index, isChange) pair or key entry within one account.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrConfigMismatch defines an invalid multisig configuration,
	// e.g. cosigner count != N or a cosigner carrying the wallet's own fingerprint.
	ErrConfigMismatch = errors.New("multisig config mismatch")
)

// InsufficientFundsError is the error type to describe insufficient balance errors with details.
type InsufficientFundsError struct {
	Need btcutil.Amount
	Have btcutil.Amount
}

// NewInsufficientFundsError is a constructor for InsufficientFundsError.
func NewInsufficientFundsError(need, have btcutil.Amount) *InsufficientFundsError {
	return &InsufficientFundsError{Need: need, Have: have}
}

// Error returns error description.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %s, have %s", e.Need, e.Have)
}

// Is implements comparator method for [errors] package.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
