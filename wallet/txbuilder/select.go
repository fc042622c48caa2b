// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/walletengine/internal/satoshi"
	"github.com/BoostyLabs/walletengine/wallet"
)

// SelectUTXOs is a greedy selection algorithm: utxos are considered in
// descending value order and the input count grows until the selection
// covers the target plus the fee estimated for that exact shape. Fee and
// selection are pure functions of the inputs, so identical calls select
// identically. sizeOf judges the virtual size of spending one utxo.
func SelectUTXOs(utxos []wallet.UTXO, target btcutil.Amount, satoshiPerVByte btcutil.Amount,
	outputsVSize int64, sizeOf func(wallet.UTXO) (int64, error)) (used []wallet.UTXO, total, fee btcutil.Amount, err error) {
	sorted := make([]wallet.UTXO, len(utxos))
	copy(sorted, utxos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	var (
		inputsVSize int64
		have        = wallet.TotalValue(utxos)
	)
	total = 0
	for i := 0; i < len(sorted); i++ {
		size, err := sizeOf(sorted[i])
		if err != nil {
			return nil, 0, 0, err
		}

		total += sorted[i].Value
		inputsVSize += size

		fee = satoshi.FeeForVSize(satoshiPerVByte, satoshi.TxOverheadVSize+inputsVSize+outputsVSize)
		if total >= target+fee {
			return sorted[:i+1], total, fee, nil
		}
	}

	return nil, 0, 0, wallet.NewInsufficientFundsError(target+fee, have)
}

// inputVSize returns the deterministic virtual size of spending one utxo,
// judged by its output script class. Classes the signer cannot spend are
// rejected here, before selection commits to them.
func inputVSize(utxo wallet.UTXO) (int64, error) {
	switch txscript.GetScriptClass(utxo.PkScript) {
	case txscript.WitnessV0PubKeyHashTy:
		return satoshi.InputP2WPKHVSize, nil
	case txscript.ScriptHashTy:
		// Own P2SH outputs are nested witness programs.
		return satoshi.InputNestedP2WPKHVSize, nil
	case txscript.PubKeyHashTy:
		return satoshi.InputP2PKHVSize, nil
	default:
		return 0, fmt.Errorf("%w: utxo %s:%d has an unsupported script class",
			wallet.ErrInvalidInput, utxo.TxID, utxo.Vout)
	}
}

// outputsVSizeFor sums deterministic output sizes for the payment outputs
// plus one change output paying to changeAddress.
func outputsVSizeFor(g *scriptResolver, outputs []Output, changeAddress string) (int64, error) {
	var vsize int64
	for _, output := range outputs {
		script, err := g.payScript(output.Address)
		if err != nil {
			return 0, err
		}

		vsize += outputVSizeForScript(script)
	}

	changeScript, err := g.payScript(changeAddress)
	if err != nil {
		return 0, err
	}

	return vsize + outputVSizeForScript(changeScript), nil
}

func outputVSizeForScript(script []byte) int64 {
	switch txscript.GetScriptClass(script) {
	case txscript.WitnessV0PubKeyHashTy:
		return satoshi.OutputP2WPKHVSize
	case txscript.WitnessV0ScriptHashTy:
		return satoshi.OutputP2WSHVSize
	case txscript.ScriptHashTy:
		return satoshi.OutputP2SHVSize
	default:
		return satoshi.OutputP2PKHVSize
	}
}

// scriptResolver caches decoded output scripts per address within one build.
type scriptResolver struct {
	generator payScripter
	cache     map[string][]byte
}

type payScripter interface {
	PayScript(address string) ([]byte, error)
}

func newScriptResolver(generator payScripter) *scriptResolver {
	return &scriptResolver{generator: generator, cache: make(map[string][]byte)}
}

func (r *scriptResolver) payScript(address string) ([]byte, error) {
	if script, ok := r.cache[address]; ok {
		return script, nil
	}

	script, err := r.generator.PayScript(address)
	if err != nil {
		return nil, fmt.Errorf("resolve output script: %w", err)
	}

	r.cache[address] = script

	return script, nil
}
