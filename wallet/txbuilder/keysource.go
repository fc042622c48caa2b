// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/keyring"
)

// KeySource hands out private keys for input signing. The source owns the
// returned keys: Close zeroes all issued material and must run on every
// exit path of a build, success or failure.
type KeySource interface {
	PrivateKeyForPath(path string) (*btcec.PrivateKey, error)
	Close()
}

// SessionKeySource derives each key on demand from its exact derivation
// path. Used for deterministic accounts.
type SessionKeySource struct {
	session *wallet.Session
	issued  []*btcec.PrivateKey
}

// NewSessionKeySource is a constructor for SessionKeySource.
func NewSessionKeySource(session *wallet.Session) *SessionKeySource {
	return &SessionKeySource{session: session}
}

// PrivateKeyForPath implements KeySource.
func (s *SessionKeySource) PrivateKeyForPath(path string) (*btcec.PrivateKey, error) {
	parsed, err := keyring.ParsePath(path)
	if err != nil {
		return nil, err
	}

	node, err := keyring.DeriveNode(s.session, parsed)
	if err != nil {
		return nil, err
	}

	privateKey, err := node.ECPrivKey()
	node.Zero()
	if err != nil {
		return nil, fmt.Errorf("extract private key: %w", err)
	}

	s.issued = append(s.issued, privateKey)

	return privateKey, nil
}

// Close implements KeySource by zeroing every issued key.
func (s *SessionKeySource) Close() {
	for _, privateKey := range s.issued {
		privateKey.Zero()
	}
	s.issued = nil
}

// StaticKeySource serves a single already-decrypted key for every path.
// Used for imported-key accounts, where the key is decrypted once and
// reused across all inputs.
type StaticKeySource struct {
	privateKey *btcec.PrivateKey
}

// NewStaticKeySource is a constructor for StaticKeySource. The source
// takes ownership of the key.
func NewStaticKeySource(privateKey *btcec.PrivateKey) *StaticKeySource {
	return &StaticKeySource{privateKey: privateKey}
}

// PrivateKeyForPath implements KeySource.
func (s *StaticKeySource) PrivateKeyForPath(string) (*btcec.PrivateKey, error) {
	if s.privateKey == nil {
		return nil, wallet.ErrWalletLocked
	}

	return s.privateKey, nil
}

// Close implements KeySource by zeroing the key.
func (s *StaticKeySource) Close() {
	if s.privateKey != nil {
		s.privateKey.Zero()
		s.privateKey = nil
	}
}
