// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package discovery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/discovery"
	"github.com/BoostyLabs/walletengine/wallet/keyring"
)

const testMnemonic = "ozone drill grab fiber curtain grace pudding thank cruise elder eight picnic"

func newTestSession(t *testing.T) *wallet.Session {
	t.Helper()

	seed, err := keyring.SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)

	session, err := wallet.NewSession(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)

	return session
}

// scriptedOracle marks the nth probed address per chain as active, counting
// probes in the order the scanner asks.
type scriptedOracle struct {
	activeProbes map[int]bool
	failProbes   map[int]bool
	probes       int
}

func (o *scriptedOracle) HasActivity(ctx context.Context, address string) (bool, error) {
	probe := o.probes
	o.probes++

	if o.failProbes[probe] {
		return false, errors.New("electrum timeout")
	}

	return o.activeProbes[probe], nil
}

func TestScanChain(t *testing.T) {
	cfg := wallet.NewConfig(&chaincfg.MainNetParams)
	session := newTestSession(t)

	t.Run("all unused stops at the gap limit", func(t *testing.T) {
		oracle := &scriptedOracle{}
		scanner := discovery.NewScanner(cfg, oracle)
		account := &wallet.HDAccount{Type: wallet.AddressTypeNativeSegWit}

		result, err := scanner.ScanChain(context.Background(), session, account, false)
		require.NoError(t, err)
		require.Equal(t, cfg.GapLimit, result.Visited)
		require.EqualValues(t, 0, result.Found)
		require.EqualValues(t, 0, result.NextIndex)
	})

	t.Run("gap counter resets on activity", func(t *testing.T) {
		// Used at indexes 0, 3 and 10; the scan must reach 10+1+20.
		oracle := &scriptedOracle{activeProbes: map[int]bool{0: true, 3: true, 10: true}}
		scanner := discovery.NewScanner(cfg, oracle)
		account := &wallet.HDAccount{Type: wallet.AddressTypeNativeSegWit}

		result, err := scanner.ScanChain(context.Background(), session, account, false)
		require.NoError(t, err)
		require.EqualValues(t, 31, result.Visited) // lastUsed + 1 + gap limit.
		require.EqualValues(t, 3, result.Found)
		require.EqualValues(t, 11, result.NextIndex)
		require.EqualValues(t, 11, account.ExternalIndex)
	})

	t.Run("used records are committed", func(t *testing.T) {
		oracle := &scriptedOracle{activeProbes: map[int]bool{2: true}}
		scanner := discovery.NewScanner(cfg, oracle)
		account := &wallet.HDAccount{Type: wallet.AddressTypeLegacy}

		_, err := scanner.ScanChain(context.Background(), session, account, false)
		require.NoError(t, err)

		record := account.RecordAt(2, false)
		require.NotNil(t, record)
		require.True(t, record.Used)

		// Unused addresses far past the last used one are not retained.
		require.Nil(t, account.RecordAt(15, false))
	})

	t.Run("oracle failure counts as unused", func(t *testing.T) {
		oracle := &scriptedOracle{
			activeProbes: map[int]bool{5: true},
			failProbes:   map[int]bool{1: true, 2: true},
		}
		scanner := discovery.NewScanner(cfg, oracle)
		account := &wallet.HDAccount{Type: wallet.AddressTypeNativeSegWit}

		result, err := scanner.ScanChain(context.Background(), session, account, false)
		require.NoError(t, err)
		require.EqualValues(t, 1, result.Found)
		require.EqualValues(t, 6, result.NextIndex)
	})

	t.Run("cancellation aborts the scan", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		scanner := discovery.NewScanner(cfg, &scriptedOracle{})
		account := &wallet.HDAccount{Type: wallet.AddressTypeNativeSegWit}

		_, err := scanner.ScanChain(ctx, session, account, false)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("cursor never moves backwards", func(t *testing.T) {
		oracle := &scriptedOracle{}
		scanner := discovery.NewScanner(cfg, oracle)
		account := &wallet.HDAccount{Type: wallet.AddressTypeNativeSegWit, ExternalIndex: 7}

		_, err := scanner.ScanChain(context.Background(), session, account, false)
		require.NoError(t, err)
		require.EqualValues(t, 7, account.ExternalIndex)
	})
}

func TestScanAccount(t *testing.T) {
	cfg := wallet.NewConfig(&chaincfg.MainNetParams)
	session := newTestSession(t)

	t.Run("scans both chains", func(t *testing.T) {
		oracle := &scriptedOracle{activeProbes: map[int]bool{0: true}}
		scanner := discovery.NewScanner(cfg, oracle)
		account := &wallet.HDAccount{Type: wallet.AddressTypeNativeSegWit}

		results, err := scanner.ScanAccount(context.Background(), session, account)
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.False(t, results[0].IsChange)
		require.True(t, results[1].IsChange)
	})

	t.Run("imported seed account scans like hd", func(t *testing.T) {
		scanner := discovery.NewScanner(cfg, &scriptedOracle{})
		account := &wallet.ImportedSeedAccount{
			HDAccount: wallet.HDAccount{Type: wallet.AddressTypeSegWit},
		}

		results, err := scanner.ScanAccount(context.Background(), session, account)
		require.NoError(t, err)
		require.Len(t, results, 2)
	})

	t.Run("skips multisig and imported key accounts", func(t *testing.T) {
		scanner := discovery.NewScanner(cfg, &scriptedOracle{})

		results, err := scanner.ScanAccount(context.Background(), session, &wallet.MultisigAccount{})
		require.NoError(t, err)
		require.Nil(t, results)

		results, err = scanner.ScanAccount(context.Background(), session, &wallet.ImportedKeyAccount{})
		require.NoError(t, err)
		require.Nil(t, results)
	})
}
