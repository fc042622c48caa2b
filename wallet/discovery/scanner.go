// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package discovery rediscovers used addresses after a wallet restore by
// walking each derivation chain until the BIP44 gap limit is hit.
package discovery

import (
	"context"
	"fmt"

	"github.com/BoostyLabs/walletengine/internal/log"
	"github.com/BoostyLabs/walletengine/wallet"
	"github.com/BoostyLabs/walletengine/wallet/addressgen"
	"github.com/BoostyLabs/walletengine/wallet/keyring"
)

// trailingWindow defines how many consecutive unused addresses past the
// last used one are retained as records for chain continuity.
const trailingWindow = 5

// AddressActivityOracle answers whether an address has ever appeared in a
// transaction. Implemented over the chain collaborator by the host.
type AddressActivityOracle interface {
	HasActivity(ctx context.Context, address string) (bool, error)
}

// Scanner performs gap-limit address discovery for one wallet.
type Scanner struct {
	cfg       wallet.Config
	generator *addressgen.Generator
	oracle    AddressActivityOracle
}

// NewScanner is a constructor for Scanner.
func NewScanner(cfg wallet.Config, oracle AddressActivityOracle) *Scanner {
	return &Scanner{
		cfg:       cfg,
		generator: addressgen.NewGenerator(cfg.NetworkParams),
		oracle:    oracle,
	}
}

// ChainResult describes the outcome of scanning one derivation chain.
type ChainResult struct {
	IsChange  bool
	Visited   uint32 // addresses probed.
	Found     uint32 // addresses with activity.
	NextIndex uint32 // first unissued index after the scan.
}

// ScanAccount scans the external and internal chains of a deterministic
// account with independent gap counters. Multisig and imported-key
// accounts are not meaningfully scannable and are skipped.
func (s *Scanner) ScanAccount(ctx context.Context, session *wallet.Session, account wallet.Account) ([]ChainResult, error) {
	switch acct := account.(type) {
	case *wallet.HDAccount:
		return s.scanBothChains(ctx, session, acct)

	case *wallet.ImportedSeedAccount:
		return s.scanBothChains(ctx, session, &acct.HDAccount)

	case *wallet.MultisigAccount, *wallet.ImportedKeyAccount:
		log.Discovery.Debug().
			Uint32("account", account.AccountIndex()).
			Msg("skipping non-scannable account")

		return nil, nil

	default:
		return nil, fmt.Errorf("%w: unsupported account kind %T", wallet.ErrInvalidInput, account)
	}
}

func (s *Scanner) scanBothChains(ctx context.Context, session *wallet.Session, account *wallet.HDAccount) ([]ChainResult, error) {
	external, err := s.ScanChain(ctx, session, account, false)
	if err != nil {
		return nil, err
	}

	internal, err := s.ScanChain(ctx, session, account, true)
	if err != nil {
		return []ChainResult{external}, err
	}

	return []ChainResult{external, internal}, nil
}

// ScanChain scans one chain of a deterministic account. The scan always
// restarts at index 0 so a restore cannot miss addresses issued before a
// crash; it stops after cfg.GapLimit consecutive unused addresses. An
// oracle failure mid-probe is treated as "unused" and logged, and the
// scan continues.
func (s *Scanner) ScanChain(ctx context.Context, session *wallet.Session, account *wallet.HDAccount, isChange bool) (ChainResult, error) {
	result := ChainResult{IsChange: isChange}

	chain := keyring.ChainExternal
	if isChange {
		chain = keyring.ChainInternal
	}

	var (
		consecutiveUnused uint32
		lastUsed          = int64(-1)
		pending           []*wallet.AddressRecord
	)

	for index := uint32(0); consecutiveUnused < s.cfg.GapLimit; index++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("scan cancelled at index %d: %w", index, err)
		}

		path, err := keyring.SingleSigPath(account.Type, s.cfg.CoinType, account.Index, chain, index)
		if err != nil {
			return result, err
		}

		node, err := keyring.DeriveNode(session, path)
		if err != nil {
			return result, err
		}

		publicKey, err := node.ECPubKey()
		if err != nil {
			return result, fmt.Errorf("extract public key: %w", err)
		}

		record, err := s.generator.Record(publicKey, account.Type, path.String(), index, isChange)
		if err != nil {
			return result, err
		}

		result.Visited++

		active, err := s.oracle.HasActivity(ctx, record.Address)
		if err != nil {
			// Treated as unused so one flaky probe cannot abort a whole
			// restore. Can under-discover funds on sustained outages.
			log.Discovery.Warn().
				Err(err).
				Uint32("index", index).
				Bool("change", isChange).
				Msg("oracle probe failed, treating address as unused")
			active = false
		}

		if active {
			record.Used = true
			result.Found++
			consecutiveUnused = 0
			lastUsed = int64(index)
		} else {
			consecutiveUnused++
		}

		pending = append(pending, record)
	}

	s.commit(account, pending, lastUsed)
	result.NextIndex = uint32(lastUsed + 1)

	if isChange {
		if account.InternalIndex < result.NextIndex {
			account.InternalIndex = result.NextIndex
		}
	} else {
		if account.ExternalIndex < result.NextIndex {
			account.ExternalIndex = result.NextIndex
		}
	}

	return result, nil
}

// commit retains every used address plus a small trailing window of
// unused ones. Records already present keep their position; only the
// used flag is refreshed.
func (s *Scanner) commit(account *wallet.HDAccount, pending []*wallet.AddressRecord, lastUsed int64) {
	for _, record := range pending {
		if !record.Used && int64(record.Index) > lastUsed+trailingWindow {
			continue
		}

		if existing := account.RecordAt(record.Index, record.IsChange); existing != nil {
			if record.Used {
				existing.Used = true
			}
			continue
		}

		// Records are unique per (index, isChange) by construction here.
		_ = account.AddRecord(record)
	}
}
