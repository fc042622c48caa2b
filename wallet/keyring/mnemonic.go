// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package keyring implements deterministic key derivation for the wallet
// engine: BIP39 seed handling and the BIP32 tree walk along BIP44/48/49/84
// paths.
package keyring

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"

	"github.com/BoostyLabs/walletengine/wallet"
)

// wordCountEntropyBits maps supported mnemonic lengths to entropy sizes.
var wordCountEntropyBits = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// GenerateMnemonic creates a new BIP39 mnemonic of the given word count
// (12, 15, 18, 21 or 24).
func GenerateMnemonic(wordCount int) (string, error) {
	bits, ok := wordCountEntropyBits[wordCount]
	if !ok {
		return "", fmt.Errorf("%w: unsupported word count %d", wallet.ErrInvalidInput, wordCount)
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic checks word count, word list membership and checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// SeedFromMnemonic derives the 512-bit wallet seed. Checksum-valid
// mnemonics built from degenerate entropy (e.g. the all-"abandon" test
// vector) are rejected: such seeds are public knowledge and funds sent to
// them are lost.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wallet.ErrInvalidInput, err)
	}

	if isWeakEntropy(entropy) {
		return nil, fmt.Errorf("%w: weak seed entropy", wallet.ErrInvalidInput)
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wallet.ErrInvalidInput, err)
	}

	return seed, nil
}

// isWeakEntropy reports degenerate entropy: every byte identical covers
// the well-known repeated-word vectors (all zeros, all ones).
func isWeakEntropy(entropy []byte) bool {
	if len(entropy) == 0 {
		return true
	}

	for _, b := range entropy {
		if b != entropy[0] {
			return false
		}
	}

	return true
}
