// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package log provides structured logging for the wallet engine.
// Secret material must never reach these loggers.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Component loggers for the engine subsystems.
var (
	Discovery zerolog.Logger
	Multisig  zerolog.Logger
	TxBuilder zerolog.Logger
	PSBT      zerolog.Logger
)

func init() {
	Init(os.Stderr, zerolog.InfoLevel)
}

// Init points all component loggers at the given writer with the given
// level. The hosting application calls this once at startup; tests may
// pass io.Discard.
func Init(w io.Writer, level zerolog.Level) {
	root := zerolog.New(w).Level(level).With().Timestamp().Logger()

	Discovery = root.With().Str("component", "discovery").Logger()
	Multisig = root.With().Str("component", "multisig").Logger()
	TxBuilder = root.With().Str("component", "txbuilder").Logger()
	PSBT = root.With().Str("component", "psbt").Logger()
}
