// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package wallet

import (
	"fmt"
)

// Account is the closed set of account kinds the engine operates on.
// Every operation matches on the concrete type; kinds it cannot serve
// must be rejected explicitly rather than silently ignored.
type Account interface {
	// AccountIndex returns the hardened derivation index of the account
	// within the wallet. Unique across all accounts.
	AccountIndex() uint32
	// AccountName returns the user-visible account label.
	AccountName() string

	sealedAccount()
}

// HDAccount is a deterministic account derived from the wallet seed.
type HDAccount struct {
	Index         uint32
	Name          string
	Type          AddressType
	ExternalIndex uint32 // next unissued receiving index.
	InternalIndex uint32 // next unissued change index.
	Addresses     []*AddressRecord
}

// ImportedSeedAccount is a deterministic account backed by a foreign seed
// imported next to the wallet's own. It derives like an HDAccount.
type ImportedSeedAccount struct {
	HDAccount
}

// ImportedKeyAccount is a single-key account imported from a WIF.
// It holds exactly one address record and cannot derive children.
type ImportedKeyAccount struct {
	Index  uint32
	Name   string
	Type   AddressType
	Record *AddressRecord
}

// MultisigAccount is an M-of-N account shared with external cosigners.
type MultisigAccount struct {
	Index         uint32
	Name          string
	M             int
	N             int
	ScriptType    MultisigScriptType
	Cosigners     []Cosigner
	ExternalIndex uint32
	InternalIndex uint32
	Addresses     []*AddressRecord
}

// Cosigner describes one multisig participant by its account-level xpub.
type Cosigner struct {
	Xpub        string
	Fingerprint string // hex-encoded 4-byte key fingerprint.
	Name        string
	IsSelf      bool
}

// AccountIndex implements Account.
func (a *HDAccount) AccountIndex() uint32 { return a.Index }

// AccountName implements Account.
func (a *HDAccount) AccountName() string { return a.Name }

func (a *HDAccount) sealedAccount() {}

// AccountIndex implements Account.
func (a *ImportedKeyAccount) AccountIndex() uint32 { return a.Index }

// AccountName implements Account.
func (a *ImportedKeyAccount) AccountName() string { return a.Name }

func (a *ImportedKeyAccount) sealedAccount() {}

// AccountIndex implements Account.
func (a *MultisigAccount) AccountIndex() uint32 { return a.Index }

// AccountName implements Account.
func (a *MultisigAccount) AccountName() string { return a.Name }

func (a *MultisigAccount) sealedAccount() {}

// ReserveExternalIndex hands out the next receiving index and advances the
// counter. Indexes are monotonic and never reused, even when address
// generation for a reserved index fails afterwards.
func (a *HDAccount) ReserveExternalIndex() uint32 {
	idx := a.ExternalIndex
	a.ExternalIndex++

	return idx
}

// ReserveInternalIndex hands out the next change index and advances the counter.
func (a *HDAccount) ReserveInternalIndex() uint32 {
	idx := a.InternalIndex
	a.InternalIndex++

	return idx
}

// AddRecord appends an address record, rejecting duplicate (index, isChange) pairs.
func (a *HDAccount) AddRecord(record *AddressRecord) error {
	if err := checkDuplicateRecord(a.Addresses, record); err != nil {
		return err
	}

	a.Addresses = append(a.Addresses, record)

	return nil
}

// RecordAt returns the record with the given (index, isChange) pair, if any.
func (a *HDAccount) RecordAt(index uint32, isChange bool) *AddressRecord {
	return recordAt(a.Addresses, index, isChange)
}

// ReserveExternalIndex hands out the next receiving index and advances the counter.
func (a *MultisigAccount) ReserveExternalIndex() uint32 {
	idx := a.ExternalIndex
	a.ExternalIndex++

	return idx
}

// ReserveInternalIndex hands out the next change index and advances the counter.
func (a *MultisigAccount) ReserveInternalIndex() uint32 {
	idx := a.InternalIndex
	a.InternalIndex++

	return idx
}

// AddRecord appends an address record, rejecting duplicate (index, isChange) pairs.
func (a *MultisigAccount) AddRecord(record *AddressRecord) error {
	if err := checkDuplicateRecord(a.Addresses, record); err != nil {
		return err
	}

	a.Addresses = append(a.Addresses, record)

	return nil
}

// RecordAt returns the record with the given (index, isChange) pair, if any.
func (a *MultisigAccount) RecordAt(index uint32, isChange bool) *AddressRecord {
	return recordAt(a.Addresses, index, isChange)
}

// SelfCosigner returns the wallet's own cosigner entry, if present.
func (a *MultisigAccount) SelfCosigner() *Cosigner {
	for i := range a.Cosigners {
		if a.Cosigners[i].IsSelf {
			return &a.Cosigners[i]
		}
	}

	return nil
}

func checkDuplicateRecord(records []*AddressRecord, record *AddressRecord) error {
	if recordAt(records, record.Index, record.IsChange) != nil {
		return fmt.Errorf("%w: address record index %d (change: %t)",
			ErrDuplicateKey, record.Index, record.IsChange)
	}

	return nil
}

func recordAt(records []*AddressRecord, index uint32, isChange bool) *AddressRecord {
	for _, record := range records {
		if record.Index == index && record.IsChange == isChange {
			return record
		}
	}

	return nil
}
