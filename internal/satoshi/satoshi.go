// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package satoshi

import (
	"github.com/btcsuite/btcd/btcutil"
)

// Deterministic virtual-size figures in vBytes. Fee computation must be a
// pure function of input/output counts and script classes, so estimates
// are fixed per class rather than measured on serialized transactions.
const (
	// TxOverheadVSize defines version, locktime and count prefixes.
	TxOverheadVSize int64 = 11

	// InputP2PKHVSize defines a legacy pubkey-hash input.
	InputP2PKHVSize int64 = 148
	// InputNestedP2WPKHVSize defines a P2SH-wrapped witness pubkey-hash input.
	InputNestedP2WPKHVSize int64 = 91
	// InputP2WPKHVSize defines a native witness pubkey-hash input.
	InputP2WPKHVSize int64 = 68

	// OutputP2PKHVSize defines a legacy output.
	OutputP2PKHVSize int64 = 34
	// OutputP2SHVSize defines a script-hash output.
	OutputP2SHVSize int64 = 32
	// OutputP2WPKHVSize defines a native witness pubkey-hash output.
	OutputP2WPKHVSize int64 = 31
	// OutputP2WSHVSize defines a native witness script-hash output.
	OutputP2WSHVSize int64 = 43

	// signatureSize defines a DER signature with sighash byte.
	signatureSize int64 = 73
	// pubKeySize defines a compressed public key with script data push.
	pubKeySize int64 = 34
)

// DustLimit defines the smallest output value in satoshi considered
// relayable for common script classes.
const DustLimit btcutil.Amount = 546

// IsDust returns true if the amount is below the dust limit.
func IsDust(amount btcutil.Amount) bool {
	return amount < DustLimit
}

// FeeForVSize returns the fee for a transaction of the given virtual size
// at the given rate in satoshi per vByte.
func FeeForVSize(satoshiPerVByte btcutil.Amount, vsize int64) btcutil.Amount {
	return btcutil.Amount(vsize) * satoshiPerVByte
}

// MultisigInputVSize returns the estimated virtual size of one M-of-N
// multisig input. Witness spends discount the script and signatures four
// to one; nested spends additionally carry the redeem script in the
// script-sig at full weight.
func MultisigInputVSize(m, n int, witness, nested bool) int64 {
	// outpoint (36) + sequence (4) + script-sig length prefix (1).
	base := int64(41)
	// OP_0 + m signatures + serialized witness script (multisig opcodes + n keys).
	scriptData := 1 + int64(m)*signatureSize + 3 + int64(n)*pubKeySize

	if !witness {
		return base + scriptData
	}

	size := base + (scriptData+2)/4 // witness items round up.
	if nested {
		size += 35 // redeem script push in script-sig.
	}

	return size
}
