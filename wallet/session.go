// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// Session owns the decrypted key material between unlock and lock.
// It is a plain value passed into every key-touching engine call; the
// hosting layer controls its lifetime and must serialize mutating calls
// per account. The engine performs no internal locking.
type Session struct {
	seed     []byte
	master   *hdkeychain.ExtendedKey
	unlocked bool
}

// NewSession derives the master node from the decrypted seed and returns
// an unlocked session. The session takes ownership of the seed buffer.
func NewSession(seed []byte, networkParams *chaincfg.Params) (*Session, error) {
	master, err := hdkeychain.NewMaster(seed, networkParams)
	if err != nil {
		return nil, fmt.Errorf("%w: derive master key: %v", ErrInvalidInput, err)
	}

	return &Session{
		seed:     seed,
		master:   master,
		unlocked: true,
	}, nil
}

// Master returns the master extended key, or ErrWalletLocked after Lock.
func (s *Session) Master() (*hdkeychain.ExtendedKey, error) {
	if s == nil || !s.unlocked {
		return nil, ErrWalletLocked
	}

	return s.master, nil
}

// IsUnlocked reports whether key material is resident.
func (s *Session) IsUnlocked() bool {
	return s != nil && s.unlocked
}

// Lock discards the key material. The seed buffer is zeroed in place and
// the master key cleared; the session cannot be reused afterwards.
func (s *Session) Lock() {
	if s == nil || !s.unlocked {
		return
	}

	for i := range s.seed {
		s.seed[i] = 0
	}
	s.seed = nil

	s.master.Zero()
	s.master = nil
	s.unlocked = false
}
