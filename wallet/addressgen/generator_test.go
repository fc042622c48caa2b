// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package addressgen_test

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/addressgen"
)

// testPublicKeys derives a deterministic key set from fixed scalars.
func testPublicKeys(t *testing.T, count int) []*btcec.PublicKey {
	t.Helper()

	keys := make([]*btcec.PublicKey, count)
	for i := range keys {
		scalar := make([]byte, 32)
		scalar[31] = byte(i + 1)
		privateKey, _ := btcec.PrivKeyFromBytes(scalar)
		keys[i] = privateKey.PubKey()
	}

	return keys
}

func TestGenerate(t *testing.T) {
	generator := addressgen.NewGenerator(&chaincfg.MainNetParams)
	publicKey := testPublicKeys(t, 1)[0]

	t.Run("legacy", func(t *testing.T) {
		generated, err := generator.Generate(publicKey, wallet.AddressTypeLegacy)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(generated.Address.EncodeAddress(), "1"))
		require.Nil(t, generated.RedeemScript)
	})

	t.Run("nested segwit retains redeem script", func(t *testing.T) {
		generated, err := generator.Generate(publicKey, wallet.AddressTypeSegWit)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(generated.Address.EncodeAddress(), "3"))
		require.NotEmpty(t, generated.RedeemScript)
	})

	t.Run("native segwit", func(t *testing.T) {
		generated, err := generator.Generate(publicKey, wallet.AddressTypeNativeSegWit)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(generated.Address.EncodeAddress(), "bc1q"))
	})

	t.Run("deterministic", func(t *testing.T) {
		for _, addressType := range []wallet.AddressType{
			wallet.AddressTypeLegacy, wallet.AddressTypeSegWit, wallet.AddressTypeNativeSegWit,
		} {
			first, err := generator.Generate(publicKey, addressType)
			require.NoError(t, err)
			second, err := generator.Generate(publicKey, addressType)
			require.NoError(t, err)
			require.Equal(t, first.Address.EncodeAddress(), second.Address.EncodeAddress())
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := generator.Generate(publicKey, wallet.AddressType("taproot"))
		require.ErrorIs(t, err, wallet.ErrInvalidInput)
	})
}

func TestRecordAndPayScript(t *testing.T) {
	generator := addressgen.NewGenerator(&chaincfg.MainNetParams)
	publicKey := testPublicKeys(t, 1)[0]

	record, err := generator.Record(publicKey, wallet.AddressTypeNativeSegWit, "m/84'/0'/0'/0/12", 12, false)
	require.NoError(t, err)
	require.EqualValues(t, 12, record.Index)
	require.False(t, record.IsChange)
	require.Equal(t, "m/84'/0'/0'/0/12", record.DerivationPath)

	script, err := generator.PayScript(record.Address)
	require.NoError(t, err)
	require.Len(t, script, 22) // OP_0 <20-byte program>.

	_, err = generator.PayScript("definitely not an address")
	require.ErrorIs(t, err, wallet.ErrInvalidInput)
}
