// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package addressgen encodes public keys and multisig key sets into chain
// addresses, retaining the scripts needed to later spend them.
package addressgen

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/walletengine/wallet"
)

// Generator provides address encoding for one network.
type Generator struct {
	networkParams *chaincfg.Params
}

// NewGenerator is a constructor for Generator.
func NewGenerator(networkParams *chaincfg.Params) *Generator {
	return &Generator{
		networkParams: networkParams,
	}
}

// GeneratedAddress holds an encoded address and its spend scripts.
type GeneratedAddress struct {
	Address      btcutil.Address
	RedeemScript []byte // set for wrapped types.
}

// Generate encodes a public key into an address of the requested type.
// Identical inputs always produce the identical address.
func (g *Generator) Generate(publicKey *btcec.PublicKey, addressType wallet.AddressType) (*GeneratedAddress, error) {
	pubKeyHash := btcutil.Hash160(publicKey.SerializeCompressed())

	switch addressType {
	case wallet.AddressTypeLegacy:
		address, err := btcutil.NewAddressPubKeyHash(pubKeyHash, g.networkParams)
		if err != nil {
			return nil, fmt.Errorf("encode p2pkh address: %w", err)
		}

		return &GeneratedAddress{Address: address}, nil

	case wallet.AddressTypeSegWit:
		witness, err := btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, g.networkParams)
		if err != nil {
			return nil, fmt.Errorf("encode witness program: %w", err)
		}

		redeemScript, err := txscript.PayToAddrScript(witness)
		if err != nil {
			return nil, fmt.Errorf("build redeem script: %w", err)
		}

		address, err := btcutil.NewAddressScriptHash(redeemScript, g.networkParams)
		if err != nil {
			return nil, fmt.Errorf("encode p2sh-p2wpkh address: %w", err)
		}

		return &GeneratedAddress{Address: address, RedeemScript: redeemScript}, nil

	case wallet.AddressTypeNativeSegWit:
		address, err := btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, g.networkParams)
		if err != nil {
			return nil, fmt.Errorf("encode p2wpkh address: %w", err)
		}

		return &GeneratedAddress{Address: address}, nil

	default:
		return nil, fmt.Errorf("%w: unknown address type %q", wallet.ErrInvalidInput, addressType)
	}
}

// Record encodes a public key and wraps the result into an AddressRecord
// carrying its derivation metadata.
func (g *Generator) Record(publicKey *btcec.PublicKey, addressType wallet.AddressType,
	path string, index uint32, isChange bool) (*wallet.AddressRecord, error) {
	generated, err := g.Generate(publicKey, addressType)
	if err != nil {
		return nil, err
	}

	return &wallet.AddressRecord{
		Address:        generated.Address.EncodeAddress(),
		DerivationPath: path,
		Index:          index,
		IsChange:       isChange,
		RedeemScript:   generated.RedeemScript,
	}, nil
}

// PayScript returns the output script paying to the given encoded address.
func (g *Generator) PayScript(address string) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(address, g.networkParams)
	if err != nil {
		return nil, fmt.Errorf("%w: decode address %q: %v", wallet.ErrInvalidInput, address, err)
	}

	script, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, fmt.Errorf("build output script: %w", err)
	}

	return script, nil
}
