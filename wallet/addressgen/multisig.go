// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package addressgen

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/walletengine/wallet"
)

// SortPublicKeys returns a new slice ordered lexicographically over the
// compressed serializations (BIP67). Deterministic ordering lets every
// cosigner build a byte-identical script independently.
func SortPublicKeys(publicKeys []*btcec.PublicKey) []*btcec.PublicKey {
	sorted := make([]*btcec.PublicKey, len(publicKeys))
	copy(sorted, publicKeys)

	sort.SliceStable(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].SerializeCompressed(), sorted[j].SerializeCompressed()) < 0
	})

	return sorted
}

// MultisigScript builds the threshold-of-N CHECKMULTISIG script over the
// BIP67-sorted keys. Any input ordering of the same key set yields the
// identical script.
func (g *Generator) MultisigScript(publicKeys []*btcec.PublicKey, threshold int) ([]byte, error) {
	if threshold < 1 || threshold > len(publicKeys) {
		return nil, fmt.Errorf("%w: threshold %d of %d keys", wallet.ErrConfigMismatch, threshold, len(publicKeys))
	}

	sorted := SortPublicKeys(publicKeys)
	addressPubKeys := make([]*btcutil.AddressPubKey, len(sorted))
	for i, publicKey := range sorted {
		addressPubKey, err := btcutil.NewAddressPubKey(publicKey.SerializeCompressed(), g.networkParams)
		if err != nil {
			return nil, fmt.Errorf("encode public key %d: %w", i, err)
		}

		addressPubKeys[i] = addressPubKey
	}

	script, err := txscript.MultiSigScript(addressPubKeys, threshold)
	if err != nil {
		return nil, fmt.Errorf("build multisig script: %w", err)
	}

	return script, nil
}

// GenerateMultisig builds the multisig script, wraps it per scriptType and
// returns an AddressRecord retaining the redeem and witness scripts
// required to later spend. Regenerating with identical inputs is
// idempotent.
func (g *Generator) GenerateMultisig(publicKeys []*btcec.PublicKey, threshold int,
	scriptType wallet.MultisigScriptType, path string, index uint32, isChange bool) (*wallet.AddressRecord, error) {
	script, err := g.MultisigScript(publicKeys, threshold)
	if err != nil {
		return nil, err
	}

	record := &wallet.AddressRecord{
		DerivationPath: path,
		Index:          index,
		IsChange:       isChange,
	}

	switch scriptType {
	case wallet.MultisigTypeP2SH:
		address, err := btcutil.NewAddressScriptHash(script, g.networkParams)
		if err != nil {
			return nil, fmt.Errorf("encode p2sh address: %w", err)
		}

		record.Address = address.EncodeAddress()
		record.RedeemScript = script

	case wallet.MultisigTypeP2WSH:
		scriptHash := sha256.Sum256(script)
		address, err := btcutil.NewAddressWitnessScriptHash(scriptHash[:], g.networkParams)
		if err != nil {
			return nil, fmt.Errorf("encode p2wsh address: %w", err)
		}

		record.Address = address.EncodeAddress()
		record.WitnessScript = script

	case wallet.MultisigTypeP2SHP2WSH:
		scriptHash := sha256.Sum256(script)
		witness, err := btcutil.NewAddressWitnessScriptHash(scriptHash[:], g.networkParams)
		if err != nil {
			return nil, fmt.Errorf("encode witness program: %w", err)
		}

		redeemScript, err := txscript.PayToAddrScript(witness)
		if err != nil {
			return nil, fmt.Errorf("build redeem script: %w", err)
		}

		address, err := btcutil.NewAddressScriptHash(redeemScript, g.networkParams)
		if err != nil {
			return nil, fmt.Errorf("encode p2sh-p2wsh address: %w", err)
		}

		record.Address = address.EncodeAddress()
		record.RedeemScript = redeemScript
		record.WitnessScript = script

	default:
		return nil, fmt.Errorf("%w: unknown multisig script type %q", wallet.ErrInvalidInput, scriptType)
	}

	return record, nil
}
