// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
)

// AddressType defines the script encoding of single-signature addresses.
type AddressType string

const (
	// AddressTypeLegacy defines P2PKH addresses.
	AddressTypeLegacy AddressType = "legacy"
	// AddressTypeSegWit defines P2SH-wrapped P2WPKH addresses.
	AddressTypeSegWit AddressType = "segwit"
	// AddressTypeNativeSegWit defines native P2WPKH (bech32) addresses.
	AddressTypeNativeSegWit AddressType = "native-segwit"
)

// MultisigScriptType defines the wrapping of a multisig script into an address.
type MultisigScriptType string

const (
	// MultisigTypeP2SH defines legacy script-hash wrapping.
	MultisigTypeP2SH MultisigScriptType = "P2SH"
	// MultisigTypeP2WSH defines native witness-script-hash wrapping.
	MultisigTypeP2WSH MultisigScriptType = "P2WSH"
	// MultisigTypeP2SHP2WSH defines witness-script-hash nested in script-hash.
	MultisigTypeP2SHP2WSH MultisigScriptType = "P2SH-P2WSH"
)

// AddressRecord describes one generated address together with the material
// needed to later spend outputs locked to it.
type AddressRecord struct {
	Address        string
	DerivationPath string
	Index          uint32
	IsChange       bool
	Used           bool
	RedeemScript   []byte // set for wrapped types.
	WitnessScript  []byte // set for witness script types.
}

// UTXO describes an unspent transaction output spendable by the wallet.
type UTXO struct {
	TxID           string
	Vout           uint32
	Value          btcutil.Amount
	Address        string
	DerivationPath string
	PkScript       []byte
	Confirmations  int64
}

// TotalValue returns the summed value of the provided utxos.
func TotalValue(utxos []UTXO) btcutil.Amount {
	var total btcutil.Amount
	for _, utxo := range utxos {
		total += utxo.Value
	}

	return total
}
