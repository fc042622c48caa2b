// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package multisig_test

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/keyring"
	"github.com/BoostyLabs/walletengine/wallet/multisig"
)

const testMnemonic = "ozone drill grab fiber curtain grace pudding thank cruise elder eight picnic"

// newCosignerSession builds an independent wallet session; the passphrase
// separates the participants.
func newCosignerSession(t *testing.T, passphrase string) *wallet.Session {
	t.Helper()

	seed, err := keyring.SeedFromMnemonic(testMnemonic, passphrase)
	require.NoError(t, err)

	session, err := wallet.NewSession(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)

	return session
}

// newTwoOfThree assembles a 2-of-3 P2WSH account owned by participant
// "ours" with cosigners derived from two foreign sessions.
func newTwoOfThree(t *testing.T) (*multisig.Coordinator, *wallet.Session, *wallet.MultisigAccount) {
	t.Helper()

	cfg := wallet.NewConfig(&chaincfg.MainNetParams)
	coordinator := multisig.NewCoordinator(cfg)

	ours := newCosignerSession(t, "ours")

	cosigners := make([]wallet.Cosigner, 0, 2)
	for _, passphrase := range []string{"second", "third"} {
		xpub, _, err := coordinator.ExportXpub(newCosignerSession(t, passphrase), wallet.MultisigTypeP2WSH, 0)
		require.NoError(t, err)

		cosigner, err := coordinator.ImportCosignerXpub(xpub, passphrase)
		require.NoError(t, err)
		cosigners = append(cosigners, cosigner)
	}

	account, err := coordinator.CreateAccount(ours, "shared", 0, 2, 3, wallet.MultisigTypeP2WSH, cosigners)
	require.NoError(t, err)

	return coordinator, ours, account
}

func TestExportXpub(t *testing.T) {
	cfg := wallet.NewConfig(&chaincfg.MainNetParams)
	coordinator := multisig.NewCoordinator(cfg)
	session := newCosignerSession(t, "ours")

	xpub, fingerprint, err := coordinator.ExportXpub(session, wallet.MultisigTypeP2WSH, 0)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(xpub, "xpub"))
	require.Len(t, fingerprint, 8)

	t.Run("deterministic", func(t *testing.T) {
		again, fingerprintAgain, err := coordinator.ExportXpub(session, wallet.MultisigTypeP2WSH, 0)
		require.NoError(t, err)
		require.Equal(t, xpub, again)
		require.Equal(t, fingerprint, fingerprintAgain)
	})

	t.Run("script type separates keys", func(t *testing.T) {
		other, _, err := coordinator.ExportXpub(session, wallet.MultisigTypeP2SH, 0)
		require.NoError(t, err)
		require.NotEqual(t, xpub, other)
	})

	t.Run("import round trip", func(t *testing.T) {
		cosigner, err := coordinator.ImportCosignerXpub(xpub, "partner")
		require.NoError(t, err)
		require.Equal(t, fingerprint, cosigner.Fingerprint)
		require.False(t, cosigner.IsSelf)
	})

	t.Run("import rejects garbage", func(t *testing.T) {
		_, err := coordinator.ImportCosignerXpub("xpub-garbage", "partner")
		require.ErrorIs(t, err, wallet.ErrInvalidInput)
	})
}

func TestCreateAccount(t *testing.T) {
	cfg := wallet.NewConfig(&chaincfg.MainNetParams)
	coordinator := multisig.NewCoordinator(cfg)

	t.Run("2-of-3 p2wsh", func(t *testing.T) {
		_, _, account := newTwoOfThree(t)

		require.Equal(t, 2, account.M)
		require.Equal(t, 3, account.N)
		require.Len(t, account.Cosigners, 3)
		require.True(t, account.Cosigners[0].IsSelf)

		// Pool pre-populated to the gap limit on both chains.
		require.Len(t, account.Addresses, int(2*cfg.GapLimit))
		require.True(t, strings.HasPrefix(account.Addresses[0].Address, "bc1q"))
		require.NotEmpty(t, account.Addresses[0].WitnessScript)
	})

	t.Run("all cosigners derive the same addresses", func(t *testing.T) {
		// Participant "second" assembles the same account from its side.
		_, _, ourAccount := newTwoOfThree(t)

		second := newCosignerSession(t, "second")
		cosigners := make([]wallet.Cosigner, 0, 2)
		for _, passphrase := range []string{"ours", "third"} {
			xpub, _, err := coordinator.ExportXpub(newCosignerSession(t, passphrase), wallet.MultisigTypeP2WSH, 0)
			require.NoError(t, err)

			cosigner, err := coordinator.ImportCosignerXpub(xpub, passphrase)
			require.NoError(t, err)
			cosigners = append(cosigners, cosigner)
		}

		theirAccount, err := coordinator.CreateAccount(second, "shared", 0, 2, 3, wallet.MultisigTypeP2WSH, cosigners)
		require.NoError(t, err)

		require.Equal(t, ourAccount.Addresses[0].Address, theirAccount.Addresses[0].Address)
		require.Equal(t, ourAccount.Addresses[0].WitnessScript, theirAccount.Addresses[0].WitnessScript)
	})

	t.Run("rejects own fingerprint among cosigners", func(t *testing.T) {
		ours := newCosignerSession(t, "ours")

		ownXpub, _, err := coordinator.ExportXpub(ours, wallet.MultisigTypeP2WSH, 0)
		require.NoError(t, err)
		self, err := coordinator.ImportCosignerXpub(ownXpub, "sneaky")
		require.NoError(t, err)

		otherXpub, _, err := coordinator.ExportXpub(newCosignerSession(t, "second"), wallet.MultisigTypeP2WSH, 0)
		require.NoError(t, err)
		other, err := coordinator.ImportCosignerXpub(otherXpub, "second")
		require.NoError(t, err)

		_, err = coordinator.CreateAccount(ours, "shared", 0, 2, 3, wallet.MultisigTypeP2WSH,
			[]wallet.Cosigner{self, other})
		require.ErrorIs(t, err, wallet.ErrConfigMismatch)
	})

	t.Run("rejects bad thresholds", func(t *testing.T) {
		ours := newCosignerSession(t, "ours")

		_, err := coordinator.CreateAccount(ours, "shared", 0, 0, 2, wallet.MultisigTypeP2WSH, nil)
		require.ErrorIs(t, err, wallet.ErrConfigMismatch)

		_, err = coordinator.CreateAccount(ours, "shared", 0, 4, 3, wallet.MultisigTypeP2WSH, nil)
		require.ErrorIs(t, err, wallet.ErrConfigMismatch)
	})

	t.Run("rejects wrong cosigner count", func(t *testing.T) {
		ours := newCosignerSession(t, "ours")

		xpub, _, err := coordinator.ExportXpub(newCosignerSession(t, "second"), wallet.MultisigTypeP2WSH, 0)
		require.NoError(t, err)
		cosigner, err := coordinator.ImportCosignerXpub(xpub, "second")
		require.NoError(t, err)

		// 2-of-3 needs two external cosigners, not one.
		_, err = coordinator.CreateAccount(ours, "shared", 0, 2, 3, wallet.MultisigTypeP2WSH,
			[]wallet.Cosigner{cosigner})
		require.ErrorIs(t, err, wallet.ErrConfigMismatch)
	})
}
