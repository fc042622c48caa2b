// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package psbtcoord coordinates partially signed transactions between
// cosigners: parsing, signing, merging independently signed copies,
// export encodings and finalization gated on the signature threshold.
package psbtcoord

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/walletengine/internal/log"
	"github.com/BoostyLabs/walletengine/wallet"
)

// feeWarningRatio defines the share of input value beyond which a fee is
// flagged as suspicious.
const feeWarningRatio = 0.10

// Coordinator provides PSBT exchange logic for one network.
type Coordinator struct {
	networkParams *chaincfg.Params
}

// NewCoordinator is a constructor for Coordinator.
func NewCoordinator(networkParams *chaincfg.Params) *Coordinator {
	return &Coordinator{
		networkParams: networkParams,
	}
}

// ImportResult describes a parsed packet. Warnings are semantic concerns
// that do not prevent signing; structural problems fail the import.
type ImportResult struct {
	Packet          *psbt.Packet
	TxID            string
	Fee             btcutil.Amount
	NumInputs       int
	SignatureCounts []int
	Warnings        []string
}

// Import parses a serialized packet given as raw binary, hex or base64.
// Structurally invalid data is fatal; semantic concerns (fee above 10% of
// input value, outputs not decodable on this network) are returned as
// warnings.
func (c *Coordinator) Import(serialized []byte) (*ImportResult, error) {
	packet, err := parseAnyEncoding(serialized)
	if err != nil {
		return nil, fmt.Errorf("%w: parse psbt: %v", wallet.ErrInvalidInput, err)
	}

	if err := packet.SanityCheck(); err != nil {
		return nil, fmt.Errorf("%w: psbt sanity: %v", wallet.ErrInvalidInput, err)
	}

	result := &ImportResult{
		Packet:          packet,
		TxID:            packet.UnsignedTx.TxHash().String(),
		NumInputs:       len(packet.Inputs),
		SignatureCounts: CountSignatures(packet),
	}

	result.Fee, result.Warnings = c.inspect(packet)

	log.PSBT.Debug().
		Str("txid", result.TxID).
		Int("inputs", result.NumInputs).
		Int("warnings", len(result.Warnings)).
		Msg("psbt imported")

	return result, nil
}

// parseAnyEncoding tries raw binary first, then hex, then base64.
func parseAnyEncoding(serialized []byte) (*psbt.Packet, error) {
	packet, rawErr := psbt.NewFromRawBytes(bytes.NewReader(serialized), false)
	if rawErr == nil {
		return packet, nil
	}

	if decoded, err := hex.DecodeString(string(serialized)); err == nil {
		if packet, err := psbt.NewFromRawBytes(bytes.NewReader(decoded), false); err == nil {
			return packet, nil
		}
	}

	if packet, err := psbt.NewFromRawBytes(bytes.NewReader(serialized), true); err == nil {
		return packet, nil
	}

	return nil, rawErr
}

// inspect computes the fee and collects semantic warnings.
func (c *Coordinator) inspect(packet *psbt.Packet) (btcutil.Amount, []string) {
	var warnings []string

	var inputValue btcutil.Amount
	feeKnown := true
	for i, input := range packet.Inputs {
		switch {
		case input.WitnessUtxo != nil:
			inputValue += btcutil.Amount(input.WitnessUtxo.Value)
		case input.NonWitnessUtxo != nil:
			prevIndex := packet.UnsignedTx.TxIn[i].PreviousOutPoint.Index
			if int(prevIndex) < len(input.NonWitnessUtxo.TxOut) {
				inputValue += btcutil.Amount(input.NonWitnessUtxo.TxOut[prevIndex].Value)
			} else {
				feeKnown = false
			}
		default:
			feeKnown = false
		}
	}

	var outputValue btcutil.Amount
	for i, txOut := range packet.UnsignedTx.TxOut {
		outputValue += btcutil.Amount(txOut.Value)

		_, addresses, _, err := txscript.ExtractPkScriptAddrs(txOut.PkScript, c.networkParams)
		if err != nil || len(addresses) == 0 {
			warnings = append(warnings,
				fmt.Sprintf("output %d does not decode to an address on %s", i, c.networkParams.Name))
		}
	}

	if !feeKnown {
		return 0, append(warnings, "fee unknown: not all inputs carry utxo data")
	}

	fee := inputValue - outputValue
	if inputValue > 0 && float64(fee) > float64(inputValue)*feeWarningRatio {
		warnings = append(warnings,
			fmt.Sprintf("fee %s exceeds %d%% of input value %s", fee, int(feeWarningRatio*100), inputValue))
	}

	return fee, warnings
}

// CountSignatures reports the number of partial signatures per input.
func CountSignatures(packet *psbt.Packet) []int {
	counts := make([]int, len(packet.Inputs))
	for i, input := range packet.Inputs {
		counts[i] = len(input.PartialSigs)
	}

	return counts
}
