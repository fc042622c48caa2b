// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder_test

import (
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/addressgen"
	"github.com/BoostyLabs/walletengine/wallet/keyring"
	"github.com/BoostyLabs/walletengine/wallet/multisig"
	"github.com/BoostyLabs/walletengine/wallet/txbuilder"
)

// newMultisigAccount assembles a funded 2-of-3 P2WSH account fixture.
func newMultisigAccount(t *testing.T) (*wallet.MultisigAccount, *multisig.Coordinator) {
	t.Helper()

	cfg := wallet.NewConfig(&chaincfg.MainNetParams)
	coordinator := multisig.NewCoordinator(cfg)

	sessions := make([]*wallet.Session, 3)
	for i, passphrase := range []string{"ours", "second", "third"} {
		seed, err := keyring.SeedFromMnemonic(testMnemonic, passphrase)
		require.NoError(t, err)

		sessions[i], err = wallet.NewSession(seed, cfg.NetworkParams)
		require.NoError(t, err)
	}

	cosigners := make([]wallet.Cosigner, 0, 2)
	for _, session := range sessions[1:] {
		xpub, _, err := coordinator.ExportXpub(session, wallet.MultisigTypeP2WSH, 0)
		require.NoError(t, err)

		cosigner, err := coordinator.ImportCosignerXpub(xpub, "partner")
		require.NoError(t, err)
		cosigners = append(cosigners, cosigner)
	}

	account, err := coordinator.CreateAccount(sessions[0], "shared", 0, 2, 3, wallet.MultisigTypeP2WSH, cosigners)
	require.NoError(t, err)

	return account, coordinator
}

func poolUTXO(t *testing.T, account *wallet.MultisigAccount, index uint32, value int64) wallet.UTXO {
	t.Helper()

	generator := addressgen.NewGenerator(&chaincfg.MainNetParams)
	record := account.RecordAt(index, false)
	require.NotNil(t, record)

	pkScript, err := generator.PayScript(record.Address)
	require.NoError(t, err)

	return wallet.UTXO{
		TxID:           fmt.Sprintf("%064x", index+1),
		Vout:           index,
		Value:          btcutil.Amount(value),
		Address:        record.Address,
		DerivationPath: record.DerivationPath,
		PkScript:       pkScript,
	}
}

func TestBuildMultisigPSBT(t *testing.T) {
	builder := txbuilder.NewTxBuilder(&chaincfg.MainNetParams)
	account, coordinator := newMultisigAccount(t)

	change, err := coordinator.NextInternalAddress(account)
	require.NoError(t, err)

	t.Run("attaches spend data to every input", func(t *testing.T) {
		utxos := []wallet.UTXO{
			poolUTXO(t, account, 0, 60_000),
			poolUTXO(t, account, 1, 60_000),
		}

		built, err := builder.BuildMultisigPSBT(txbuilder.MultisigPSBTParams{
			Account:         account,
			UTXOs:           utxos,
			Outputs:         []txbuilder.Output{{Address: paymentAddress, Value: 90_000}},
			ChangeAddress:   change,
			SatoshiPerVByte: 2,
		})
		require.NoError(t, err)
		require.Len(t, built.SelectedUTXOs, 2)

		for i := range built.Packet.Inputs {
			input := built.Packet.Inputs[i]
			require.NotNil(t, input.WitnessUtxo)
			require.NotEmpty(t, input.WitnessScript)
			require.Empty(t, input.RedeemScript) // native p2wsh.
			require.Equal(t, txscript.SigHashAll, input.SighashType)
			require.Empty(t, input.PartialSigs)
		}
	})

	t.Run("rejects utxos off the pool", func(t *testing.T) {
		foreign := poolUTXO(t, account, 0, 60_000)
		foreign.Address = paymentAddress

		_, err := builder.BuildMultisigPSBT(txbuilder.MultisigPSBTParams{
			Account:         account,
			UTXOs:           []wallet.UTXO{foreign},
			Outputs:         []txbuilder.Output{{Address: paymentAddress, Value: 10_000}},
			ChangeAddress:   change,
			SatoshiPerVByte: 1,
		})
		require.ErrorIs(t, err, wallet.ErrInvalidInput)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := builder.BuildMultisigPSBT(txbuilder.MultisigPSBTParams{
			Outputs:         []txbuilder.Output{{Address: paymentAddress, Value: 10_000}},
			ChangeAddress:   change,
			SatoshiPerVByte: 1,
		})
		require.ErrorIs(t, err, wallet.ErrInvalidInput)
	})
}
