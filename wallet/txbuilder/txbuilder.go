// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package txbuilder assembles and signs wallet transactions: utxo
// selection, deterministic fee computation, single-signature transactions
// and unsigned multisig PSBTs.
package txbuilder

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/walletengine/internal/log"
	"github.com/BoostyLabs/walletengine/internal/satoshi"
	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/addressgen"
)

const (
	// txVersion defines transaction version for this builder.
	txVersion int32 = 2
	// signHashType defines signature hash type for input signing.
	signHashType = txscript.SigHashAll
)

// Output describes one payment of a transaction.
type Output struct {
	Address string
	Value   btcutil.Amount
}

// BuildParams describes data needed to build and sign a single-signature
// transaction. ChangeAddress must be a freshly generated, single-use
// internal-chain address: the builder never substitutes another address,
// and its absence is terminal.
type BuildParams struct {
	UTXOs           []wallet.UTXO
	Outputs         []Output
	ChangeAddress   *wallet.AddressRecord
	SatoshiPerVByte btcutil.Amount
	Keys            KeySource
}

// BuiltTransaction holds an assembled transaction and its accounting.
type BuiltTransaction struct {
	Tx            *wire.MsgTx
	TxID          string
	Fee           btcutil.Amount
	ChangeValue   btcutil.Amount
	SelectedUTXOs []wallet.UTXO
}

// TxBuilder provides transaction building related logic.
type TxBuilder struct {
	networkParams *chaincfg.Params
	generator     *addressgen.Generator
}

// NewTxBuilder is a constructor for TxBuilder.
func NewTxBuilder(networkParams *chaincfg.Params) *TxBuilder {
	return &TxBuilder{
		networkParams: networkParams,
		generator:     addressgen.NewGenerator(networkParams),
	}
}

// Build selects inputs, assembles and signs a single-signature
// transaction. Key material obtained from params.Keys is zeroed in a
// guaranteed-cleanup step on every exit path.
func (b *TxBuilder) Build(params BuildParams) (_ *BuiltTransaction, err error) {
	if params.Keys != nil {
		defer params.Keys.Close()
	}

	if err := b.validate(params); err != nil {
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

	used, total, fee, err := SelectUTXOs(params.UTXOs, target, params.SatoshiPerVByte, outputsVSize, inputVSize)
	if err != nil {
		return nil, err
	}

	tx, change, err := b.assemble(resolver, used, params.Outputs, params.ChangeAddress.Address, total, target, fee)
	if err != nil {
		return nil, err
	}
	if change == 0 {
		// Sub-dust remainder is absorbed into the fee.
		fee = total - target
	}

	if err := b.sign(tx, used, params.Keys); err != nil {
		return nil, err
	}

	log.TxBuilder.Debug().
		Str("txid", tx.TxHash().String()).
		Int("inputs", len(used)).
		Int64("fee", int64(fee)).
		Msg("transaction built")

	return &BuiltTransaction{
		Tx:            tx,
		TxID:          tx.TxHash().String(),
		Fee:           fee,
		ChangeValue:   change,
		SelectedUTXOs: used,
	}, nil
}

func (b *TxBuilder) validate(params BuildParams) error {
	if len(params.Outputs) == 0 {
		return fmt.Errorf("%w: no outputs", wallet.ErrInvalidInput)
	}
	if params.ChangeAddress == nil || params.ChangeAddress.Address == "" {
		return fmt.Errorf("%w: missing change address", wallet.ErrInvalidInput)
	}
	if params.SatoshiPerVByte <= 0 {
		return fmt.Errorf("%w: fee rate must be positive", wallet.ErrInvalidInput)
	}

	for _, output := range params.Outputs {
		if satoshi.IsDust(output.Value) {
			return fmt.Errorf("%w: output of %s to %s is below the dust limit",
				wallet.ErrInvalidInput, output.Value, output.Address)
		}
	}

	return nil
}

// assemble builds the unsigned transaction. The change output is added
// only when the remainder clears the dust limit; the reserved change
// address is burned either way.
func (b *TxBuilder) assemble(resolver *scriptResolver, used []wallet.UTXO, outputs []Output,
	changeAddress string, total, target, fee btcutil.Amount) (*wire.MsgTx, btcutil.Amount, error) {
	tx := wire.NewMsgTx(txVersion)

	for _, utxo := range used {
		utxoHash, err := chainhash.NewHashFromStr(utxo.TxID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: utxo txid %q: %v", wallet.ErrInvalidInput, utxo.TxID, err)
		}

		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(utxoHash, utxo.Vout), nil, nil))
	}

	for _, output := range outputs {
		script, err := resolver.payScript(output.Address)
		if err != nil {
			return nil, 0, err
		}

		tx.AddTxOut(wire.NewTxOut(int64(output.Value), script))
	}

	change := total - target - fee
	if satoshi.IsDust(change) {
		return tx, 0, nil
	}

	changeScript, err := resolver.payScript(changeAddress)
	if err != nil {
		return nil, 0, err
	}

	tx.AddTxOut(wire.NewTxOut(int64(change), changeScript))

	return tx, change, nil
}

// sign signs every input according to its script class, deriving keys on
// demand from each input's exact derivation path.
func (b *TxBuilder) sign(tx *wire.MsgTx, used []wallet.UTXO, keys KeySource) error {
	if keys == nil {
		return wallet.ErrWalletLocked
	}

	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(used))
	for i, utxo := range used {
		prevOuts[tx.TxIn[i].PreviousOutPoint] = wire.NewTxOut(int64(utxo.Value), utxo.PkScript)
	}
	sigHashes := txscript.NewTxSigHashes(tx, txscript.NewMultiPrevOutFetcher(prevOuts))

	for i, utxo := range used {
		privateKey, err := keys.PrivateKeyForPath(utxo.DerivationPath)
		if err != nil {
			return err
		}

		switch txscript.GetScriptClass(utxo.PkScript) {
		case txscript.PubKeyHashTy:
			sigScript, err := txscript.SignatureScript(tx, i, utxo.PkScript, signHashType, privateKey, true)
			if err != nil {
				return fmt.Errorf("sign input %d: %w", i, err)
			}

			tx.TxIn[i].SignatureScript = sigScript

		case txscript.WitnessV0PubKeyHashTy:
			witness, err := txscript.WitnessSignature(tx, sigHashes, i, int64(utxo.Value),
				utxo.PkScript, signHashType, privateKey, true)
			if err != nil {
				return fmt.Errorf("sign input %d: %w", i, err)
			}

			tx.TxIn[i].Witness = witness

		case txscript.ScriptHashTy:
			// Own P2SH outputs are nested P2WPKH: the redeem script is the
			// witness program over this input's public key.
			witnessProgram, err := b.witnessProgramFor(privateKey.PubKey().SerializeCompressed())
			if err != nil {
				return err
			}

			witness, err := txscript.WitnessSignature(tx, sigHashes, i, int64(utxo.Value),
				witnessProgram, signHashType, privateKey, true)
			if err != nil {
				return fmt.Errorf("sign input %d: %w", i, err)
			}

			sigScript, err := txscript.NewScriptBuilder().AddData(witnessProgram).Script()
			if err != nil {
				return fmt.Errorf("build script-sig for input %d: %w", i, err)
			}

			tx.TxIn[i].Witness = witness
			tx.TxIn[i].SignatureScript = sigScript

		default:
			return fmt.Errorf("%w: input %d has an unsupported script class", wallet.ErrInvalidInput, i)
		}
	}

	return nil
}

// witnessProgramFor builds the P2WPKH program over a compressed public key.
func (b *TxBuilder) witnessProgramFor(compressedPubKey []byte) ([]byte, error) {
	witness, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(compressedPubKey), b.networkParams)
	if err != nil {
		return nil, fmt.Errorf("encode witness program: %w", err)
	}

	return txscript.PayToAddrScript(witness)
}
