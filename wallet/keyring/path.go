// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package keyring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BoostyLabs/walletengine/wallet"
)

// BIP43 purpose values used by the engine.
const (
	// PurposeLegacy defines BIP44 legacy P2PKH derivation.
	PurposeLegacy uint32 = 44
	// PurposeMultisig defines BIP48 multisig derivation.
	PurposeMultisig uint32 = 48
	// PurposeSegWit defines BIP49 nested segwit derivation.
	PurposeSegWit uint32 = 49
	// PurposeNativeSegWit defines BIP84 native segwit derivation.
	PurposeNativeSegWit uint32 = 84
)

// BIP48 script branch values encoding the multisig wrapping.
const (
	// ScriptBranchP2SH covers P2SH and P2SH-P2WSH accounts.
	ScriptBranchP2SH uint32 = 1
	// ScriptBranchP2WSH covers native P2WSH accounts.
	ScriptBranchP2WSH uint32 = 2
)

// Chain values distinguishing receiving and change branches.
const (
	// ChainExternal defines the receiving branch.
	ChainExternal uint32 = 0
	// ChainInternal defines the change branch.
	ChainInternal uint32 = 1
)

// DerivationPath describes one path of the forms
// m/{44|49|84}'/coin'/account'/{0|1}/index and
// m/48'/coin'/account'/{1|2}'/{0|1}/index. Hardening of the purpose, coin,
// account and script branch segments is implied and not stored.
type DerivationPath struct {
	Purpose      uint32
	Coin         uint32
	Account      uint32
	ScriptBranch uint32 // set only when Purpose == PurposeMultisig.
	Change       uint32
	Index        uint32
}

// SingleSigPath builds a validated single-signature path.
func SingleSigPath(addressType wallet.AddressType, coin, account, change, index uint32) (DerivationPath, error) {
	purpose, err := PurposeForAddressType(addressType)
	if err != nil {
		return DerivationPath{}, err
	}

	path := DerivationPath{Purpose: purpose, Coin: coin, Account: account, Change: change, Index: index}

	return path, path.Validate()
}

// MultisigPath builds a validated BIP48 path for the given script type.
func MultisigPath(scriptType wallet.MultisigScriptType, coin, account, change, index uint32) (DerivationPath, error) {
	branch, err := ScriptBranchForType(scriptType)
	if err != nil {
		return DerivationPath{}, err
	}

	path := DerivationPath{
		Purpose:      PurposeMultisig,
		Coin:         coin,
		Account:      account,
		ScriptBranch: branch,
		Change:       change,
		Index:        index,
	}

	return path, path.Validate()
}

// PurposeForAddressType maps a single-signature address type to its purpose.
func PurposeForAddressType(addressType wallet.AddressType) (uint32, error) {
	switch addressType {
	case wallet.AddressTypeLegacy:
		return PurposeLegacy, nil
	case wallet.AddressTypeSegWit:
		return PurposeSegWit, nil
	case wallet.AddressTypeNativeSegWit:
		return PurposeNativeSegWit, nil
	default:
		return 0, fmt.Errorf("%w: unknown address type %q", wallet.ErrInvalidInput, addressType)
	}
}

// ScriptBranchForType maps a multisig script type to its BIP48 branch.
func ScriptBranchForType(scriptType wallet.MultisigScriptType) (uint32, error) {
	switch scriptType {
	case wallet.MultisigTypeP2SH, wallet.MultisigTypeP2SHP2WSH:
		return ScriptBranchP2SH, nil
	case wallet.MultisigTypeP2WSH:
		return ScriptBranchP2WSH, nil
	default:
		return 0, fmt.Errorf("%w: unknown multisig script type %q", wallet.ErrInvalidInput, scriptType)
	}
}

// Validate checks the path segments against the supported schemes.
func (p DerivationPath) Validate() error {
	switch p.Purpose {
	case PurposeLegacy, PurposeSegWit, PurposeNativeSegWit:
		if p.ScriptBranch != 0 {
			return fmt.Errorf("%w: script branch is a BIP48 segment", wallet.ErrInvalidInput)
		}
	case PurposeMultisig:
		if p.ScriptBranch != ScriptBranchP2SH && p.ScriptBranch != ScriptBranchP2WSH {
			return fmt.Errorf("%w: script branch %d", wallet.ErrInvalidInput, p.ScriptBranch)
		}
	default:
		return fmt.Errorf("%w: purpose %d", wallet.ErrInvalidInput, p.Purpose)
	}

	if p.Change != ChainExternal && p.Change != ChainInternal {
		return fmt.Errorf("%w: change segment %d", wallet.ErrInvalidInput, p.Change)
	}
	if p.Account > maxHardenedIndex || p.Index > maxHardenedIndex {
		return fmt.Errorf("%w: segment out of range", wallet.ErrInvalidInput)
	}

	return nil
}

// String formats the path in the usual apostrophe notation.
func (p DerivationPath) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "m/%d'/%d'/%d'", p.Purpose, p.Coin, p.Account)
	if p.Purpose == PurposeMultisig {
		fmt.Fprintf(&sb, "/%d'", p.ScriptBranch)
	}
	fmt.Fprintf(&sb, "/%d/%d", p.Change, p.Index)

	return sb.String()
}

// ParsePath parses the apostrophe notation produced by String.
func ParsePath(raw string) (DerivationPath, error) {
	segments := strings.Split(raw, "/")
	if len(segments) == 0 || segments[0] != "m" {
		return DerivationPath{}, fmt.Errorf("%w: path must start with m/", wallet.ErrInvalidInput)
	}
	segments = segments[1:]

	if len(segments) != 5 && len(segments) != 6 {
		return DerivationPath{}, fmt.Errorf("%w: path %q has %d segments", wallet.ErrInvalidInput, raw, len(segments))
	}

	values := make([]uint32, len(segments))
	hardened := make([]bool, len(segments))
	for i, segment := range segments {
		hardened[i] = strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h")
		if hardened[i] {
			segment = segment[:len(segment)-1]
		}

		v, err := strconv.ParseUint(segment, 10, 32)
		if err != nil || v > uint64(maxHardenedIndex) {
			return DerivationPath{}, fmt.Errorf("%w: path segment %q", wallet.ErrInvalidInput, segments[i])
		}
		values[i] = uint32(v)
	}

	path := DerivationPath{Purpose: values[0], Coin: values[1], Account: values[2]}
	rest := values[3:]
	restHardened := hardened[3:]

	if path.Purpose == PurposeMultisig {
		if len(values) != 6 || !restHardened[0] {
			return DerivationPath{}, fmt.Errorf("%w: BIP48 path needs a hardened script branch", wallet.ErrInvalidInput)
		}
		path.ScriptBranch = rest[0]
		rest = rest[1:]
		restHardened = restHardened[1:]
	} else if len(values) != 5 {
		return DerivationPath{}, fmt.Errorf("%w: path %q", wallet.ErrInvalidInput, raw)
	}

	if !hardened[0] || !hardened[1] || !hardened[2] || restHardened[0] || restHardened[1] {
		return DerivationPath{}, fmt.Errorf("%w: path %q hardening", wallet.ErrInvalidInput, raw)
	}

	path.Change = rest[0]
	path.Index = rest[1]

	return path, path.Validate()
}
