// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package privacy

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/addressgen"
	"github.com/BoostyLabs/walletengine/wallet/keyring"
)

// XpubContact rotates through addresses derived from a contact's extended
// public key. The cursor strictly advances and never wraps back to index 0:
// handing out a previously used address would link payments on chain.
type XpubContact struct {
	Name            string
	Xpub            string
	CachedAddresses []string
	LastUsedIndex   int // -1 before the first send.
}

// FixedContact is a contact known only by a single static address. The
// reuse counter is plain risk signaling; it never affects selection.
type FixedContact struct {
	Name       string
	Address    string
	ReuseCount int
}

// NewXpubContact derives cacheSize external-chain addresses from the
// contact's xpub and returns a contact with an unused cursor.
func NewXpubContact(name, xpub string, addressType wallet.AddressType,
	cacheSize int, networkParams *chaincfg.Params) (*XpubContact, error) {
	account, err := keyring.ParseXpub(xpub, networkParams)
	if err != nil {
		return nil, err
	}

	generator := addressgen.NewGenerator(networkParams)
	cached := make([]string, 0, cacheSize)
	for index := uint32(0); index < uint32(cacheSize); index++ {
		node, err := keyring.DeriveChild(account, keyring.ChainExternal, index)
		if err != nil {
			return nil, fmt.Errorf("derive contact address %d: %w", index, err)
		}

		publicKey, err := node.ECPubKey()
		if err != nil {
			return nil, fmt.Errorf("extract public key: %w", err)
		}

		generated, err := generator.Generate(publicKey, addressType)
		if err != nil {
			return nil, err
		}

		cached = append(cached, generated.Address.EncodeAddress())
	}

	return &XpubContact{
		Name:            name,
		Xpub:            xpub,
		CachedAddresses: cached,
		LastUsedIndex:   -1,
	}, nil
}

// NextAddress returns the next unissued cached address without advancing
// the cursor. When the cache is spent it fails with ErrCacheExhausted
// rather than wrapping to index 0.
func (c *XpubContact) NextAddress() (string, error) {
	next := c.LastUsedIndex + 1
	if next >= len(c.CachedAddresses) {
		return "", fmt.Errorf("%w: contact %q has used all %d cached addresses",
			wallet.ErrCacheExhausted, c.Name, len(c.CachedAddresses))
	}

	return c.CachedAddresses[next], nil
}

// RecordUsage advances the cursor by exactly one. Call exactly once per
// actual send, after the transaction is handed off for broadcast.
func (c *XpubContact) RecordUsage() error {
	if c.LastUsedIndex+1 >= len(c.CachedAddresses) {
		return fmt.Errorf("%w: contact %q cursor cannot advance", wallet.ErrCacheExhausted, c.Name)
	}

	c.LastUsedIndex++

	return nil
}

// RecordUsage increments the reuse counter for risk reporting.
func (c *FixedContact) RecordUsage() {
	c.ReuseCount++
}

// NextAddress always returns the single static address.
func (c *FixedContact) NextAddress() (string, error) {
	if c.Address == "" {
		return "", fmt.Errorf("%w: contact %q has no address", wallet.ErrInvalidInput, c.Name)
	}

	return c.Address, nil
}
