// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package psbtcoord

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/walletengine/internal/log"
	"github.com/BoostyLabs/walletengine/wallet"
)

// Finalize checks that every input carries at least threshold signatures,
// finalizes the packet and extracts the broadcast-ready transaction with
// its network serialization in hex.
func (c *Coordinator) Finalize(packet *psbt.Packet, threshold int) (*wire.MsgTx, string, error) {
	if threshold < 1 {
		return nil, "", fmt.Errorf("%w: threshold %d", wallet.ErrInvalidInput, threshold)
	}

	for i, count := range CountSignatures(packet) {
		if count < threshold {
			return nil, "", fmt.Errorf("%w: input %d has %d of %d required signatures",
				wallet.ErrInsufficientSignatures, i, count, threshold)
		}
	}

	for i := range packet.Inputs {
		if err := finalizeLegacyMultisigInput(&packet.Inputs[i], i); err != nil {
			return nil, "", err
		}
	}

	if err := psbt.MaybeFinalizeAll(packet); err != nil {
		return nil, "", fmt.Errorf("finalize psbt: %w", err)
	}

	tx, err := psbt.Extract(packet)
	if err != nil {
		return nil, "", fmt.Errorf("extract transaction: %w", err)
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, "", fmt.Errorf("serialize transaction: %w", err)
	}

	log.PSBT.Info().
		Str("txid", tx.TxHash().String()).
		Int("inputs", len(tx.TxIn)).
		Msg("psbt finalized")

	return tx, hex.EncodeToString(buf.Bytes()), nil
}

// finalizeLegacyMultisigInput assembles the final script sig of a legacy
// P2SH multisig input. The psbt finalizer handles such inputs only when
// the full previous transaction is attached, which signing never needed,
// so the script sig is built here from the collected partial signatures,
// ordered by key position in the redeem script.
func finalizeLegacyMultisigInput(input *psbt.PInput, idx int) error {
	if len(input.WitnessScript) != 0 || len(input.RedeemScript) == 0 {
		return nil
	}
	if txscript.GetScriptClass(input.RedeemScript) != txscript.MultiSigTy {
		return nil
	}

	_, required, err := txscript.CalcMultiSigStats(input.RedeemScript)
	if err != nil {
		return fmt.Errorf("finalize input %d: %w", idx, err)
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_0)

	added := 0
	tokenizer := txscript.MakeScriptTokenizer(0, input.RedeemScript)
	for tokenizer.Next() && added < required {
		signature := partialSigFor(input, tokenizer.Data())
		if signature == nil {
			continue
		}

		builder.AddData(signature)
		added++
	}
	if added < required {
		return fmt.Errorf("%w: input %d has %d of %d required signatures",
			wallet.ErrInsufficientSignatures, idx, added, required)
	}

	builder.AddData(input.RedeemScript)
	script, err := builder.Script()
	if err != nil {
		return fmt.Errorf("finalize input %d: %w", idx, err)
	}

	input.FinalScriptSig = script
	input.PartialSigs = nil
	input.SighashType = 0
	input.RedeemScript = nil

	return nil
}

func partialSigFor(input *psbt.PInput, pubKey []byte) []byte {
	for _, partial := range input.PartialSigs {
		if bytes.Equal(partial.PubKey, pubKey) {
			return partial.Signature
		}
	}

	return nil
}
