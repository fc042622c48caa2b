// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/walletengine/internal/satoshi"
	"github.com/BoostyLabs/walletengine/wallet"
)

// MultisigPSBTParams describes data needed to build an unsigned PSBT
// spending from a multisig account pool. Every utxo must sit on a pool
// address of the account so its spend scripts can be attached.
type MultisigPSBTParams struct {
	Account         *wallet.MultisigAccount
	UTXOs           []wallet.UTXO
	Outputs         []Output
	ChangeAddress   *wallet.AddressRecord
	SatoshiPerVByte btcutil.Amount
}

// BuiltPSBT holds an assembled unsigned packet and its accounting.
type BuiltPSBT struct {
	Packet        *psbt.Packet
	TxID          string
	Fee           btcutil.Amount
	ChangeValue   btcutil.Amount
	SelectedUTXOs []wallet.UTXO
}

// BuildMultisigPSBT selects inputs and assembles an unsigned PSBT carrying
// the witness data, redeem and witness scripts every cosigner needs to add
// its signature independently.
func (b *TxBuilder) BuildMultisigPSBT(params MultisigPSBTParams) (*BuiltPSBT, error) {
	if params.Account == nil {
		return nil, fmt.Errorf("%w: missing multisig account", wallet.ErrInvalidInput)
	}
	if err := b.validate(BuildParams{
		UTXOs:           params.UTXOs,
		Outputs:         params.Outputs,
		ChangeAddress:   params.ChangeAddress,
		SatoshiPerVByte: params.SatoshiPerVByte,
	}); err != nil {
		return nil, err
	}

	resolver := newScriptResolver(b.generator)
	outputsVSize, err := outputsVSizeFor(resolver, params.Outputs, params.ChangeAddress.Address)
	if err != nil {
		return nil, err
	}

	var target btcutil.Amount
	for _, output := range params.Outputs {
		target += output.Value
	}

	witness := params.Account.ScriptType != wallet.MultisigTypeP2SH
	nested := params.Account.ScriptType == wallet.MultisigTypeP2SHP2WSH
	sizeOf := func(wallet.UTXO) (int64, error) {
		return satoshi.MultisigInputVSize(params.Account.M, params.Account.N, witness, nested), nil
	}

	used, total, fee, err := SelectUTXOs(params.UTXOs, target, params.SatoshiPerVByte, outputsVSize, sizeOf)
	if err != nil {
		return nil, err
	}

	tx, change, err := b.assemble(resolver, used, params.Outputs, params.ChangeAddress.Address, total, target, fee)
	if err != nil {
		return nil, err
	}
	if change == 0 {
		fee = total - target
	}

	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, fmt.Errorf("build psbt: %w", err)
	}

	for i, utxo := range used {
		record := poolRecordFor(params.Account, utxo.Address)
		if record == nil {
			return nil, fmt.Errorf("%w: utxo %s:%d is not on a pool address",
				wallet.ErrInvalidInput, utxo.TxID, utxo.Vout)
		}

		packet.Inputs[i].WitnessUtxo = wire.NewTxOut(int64(utxo.Value), utxo.PkScript)
		packet.Inputs[i].RedeemScript = record.RedeemScript
		packet.Inputs[i].WitnessScript = record.WitnessScript
		packet.Inputs[i].SighashType = signHashType
	}

	return &BuiltPSBT{
		Packet:        packet,
		TxID:          tx.TxHash().String(),
		Fee:           fee,
		ChangeValue:   change,
		SelectedUTXOs: used,
	}, nil
}

func poolRecordFor(account *wallet.MultisigAccount, address string) *wallet.AddressRecord {
	for _, record := range account.Addresses {
		if record.Address == address {
			return record
		}
	}

	return nil
}
