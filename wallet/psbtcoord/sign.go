// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package psbtcoord

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/walletengine/wallet"
)

// Sign adds our partial signature to every input whose multisig script
// contains our public key. Inputs already carrying our signature are left
// untouched, so re-signing is idempotent. Returns the number of inputs
// signed.
func (c *Coordinator) Sign(packet *psbt.Packet, privateKey *btcec.PrivateKey) (int, error) {
	if privateKey == nil {
		return 0, wallet.ErrWalletLocked
	}

	ourPubKey := privateKey.PubKey().SerializeCompressed()

	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(packet.Inputs))
	for i, input := range packet.Inputs {
		if input.WitnessUtxo != nil {
			prevOuts[packet.UnsignedTx.TxIn[i].PreviousOutPoint] = input.WitnessUtxo
		}
	}
	sigHashes := txscript.NewTxSigHashes(packet.UnsignedTx, txscript.NewMultiPrevOutFetcher(prevOuts))

	signed := 0
	for i := range packet.Inputs {
		input := &packet.Inputs[i]

		script := input.WitnessScript
		witness := true
		if len(script) == 0 {
			script = input.RedeemScript
			witness = false
		}
		if len(script) == 0 {
			continue
		}

		if !scriptContainsKey(script, ourPubKey) {
			continue
		}
		if hasPartialSig(input, ourPubKey) {
			continue
		}

		sigHashType := input.SighashType
		if sigHashType == 0 {
			sigHashType = txscript.SigHashAll
		}

		var (
			signature []byte
			err       error
		)
		if witness {
			if input.WitnessUtxo == nil {
				return signed, fmt.Errorf("%w: input %d has no witness utxo", wallet.ErrInvalidInput, i)
			}

			signature, err = txscript.RawTxInWitnessSignature(packet.UnsignedTx, sigHashes, i,
				input.WitnessUtxo.Value, script, sigHashType, privateKey)
		} else {
			signature, err = txscript.RawTxInSignature(packet.UnsignedTx, i, script, sigHashType, privateKey)
		}
		if err != nil {
			return signed, fmt.Errorf("sign input %d: %w", i, err)
		}

		input.PartialSigs = append(input.PartialSigs, &psbt.PartialSig{
			PubKey:    ourPubKey,
			Signature: signature,
		})
		signed++
	}

	return signed, nil
}

// scriptContainsKey reports whether the serialized public key appears as
// a data push of the multisig script.
func scriptContainsKey(script, pubKey []byte) bool {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if bytes.Equal(tokenizer.Data(), pubKey) {
			return true
		}
	}

	return false
}

func hasPartialSig(input *psbt.PInput, pubKey []byte) bool {
	for _, partial := range input.PartialSigs {
		if bytes.Equal(partial.PubKey, pubKey) {
			return true
		}
	}

	return false
}
