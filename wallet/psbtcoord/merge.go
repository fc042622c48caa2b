// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package psbtcoord

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/BoostyLabs/walletengine/wallet"
)

// Merge unions partial signatures across independently signed copies of
// the same transaction. Signatures are deduplicated by public key, so
// counts after a merge equal the union of the contributions: no loss, no
// duplication.
func (c *Coordinator) Merge(packets []*psbt.Packet) (*psbt.Packet, error) {
	if len(packets) == 0 {
		return nil, fmt.Errorf("%w: no packets to merge", wallet.ErrInvalidInput)
	}

	merged, err := clonePacket(packets[0])
	if err != nil {
		return nil, err
	}

	baseTxID := merged.UnsignedTx.TxHash()
	for _, packet := range packets[1:] {
		txID := packet.UnsignedTx.TxHash()
		if !baseTxID.IsEqual(&txID) {
			return nil, fmt.Errorf("%w: packets describe different transactions (%s vs %s)",
				wallet.ErrInvalidInput, baseTxID, txID)
		}
		if len(packet.Inputs) != len(merged.Inputs) {
			return nil, fmt.Errorf("%w: input count mismatch", wallet.ErrInvalidInput)
		}

		for i := range packet.Inputs {
			mergeInput(&merged.Inputs[i], &packet.Inputs[i])
		}
	}

	return merged, nil
}

// mergeInput copies signatures and any missing spend data from src.
func mergeInput(dst, src *psbt.PInput) {
	for _, partial := range src.PartialSigs {
		if !hasPartialSig(dst, partial.PubKey) {
			dst.PartialSigs = append(dst.PartialSigs, partial)
		}
	}

	if dst.WitnessUtxo == nil {
		dst.WitnessUtxo = src.WitnessUtxo
	}
	if dst.NonWitnessUtxo == nil {
		dst.NonWitnessUtxo = src.NonWitnessUtxo
	}
	if len(dst.RedeemScript) == 0 {
		dst.RedeemScript = src.RedeemScript
	}
	if len(dst.WitnessScript) == 0 {
		dst.WitnessScript = src.WitnessScript
	}
	if dst.SighashType == 0 {
		dst.SighashType = src.SighashType
	}
}

// clonePacket deep-copies a packet through its serialization.
func clonePacket(packet *psbt.Packet) (*psbt.Packet, error) {
	var buf bytes.Buffer
	if err := packet.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize psbt: %w", err)
	}

	clone, err := psbt.NewFromRawBytes(&buf, false)
	if err != nil {
		return nil, fmt.Errorf("reparse psbt: %w", err)
	}

	return clone, nil
}
