// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package chunker_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/walletengine/internal/chunker"
)

func TestChunker(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 40) // 320 bytes.

	t.Run("Split", func(t *testing.T) {
		chunks := chunker.Split(data, 100)
		require.Len(t, chunks, 4)
		for i, chunk := range chunks {
			require.Equal(t, i, chunk.Index)
			require.Equal(t, 4, chunk.Total)
		}
		require.Len(t, chunks[3].Payload, 20)
	})

	t.Run("Split smaller than chunk size", func(t *testing.T) {
		chunks := chunker.Split(data, 1000)
		require.Len(t, chunks, 1)
		require.Equal(t, data, chunks[0].Payload)
	})

	t.Run("Join restores the payload", func(t *testing.T) {
		joined, err := chunker.Join(chunker.Split(data, 7))
		require.NoError(t, err)
		require.Equal(t, data, joined)
	})

	t.Run("Join of exact multiple", func(t *testing.T) {
		joined, err := chunker.Join(chunker.Split(data, 80))
		require.NoError(t, err)
		require.Equal(t, data, joined)
	})

	t.Run("Join rejects empty sequence", func(t *testing.T) {
		_, err := chunker.Join(nil)
		require.ErrorIs(t, err, chunker.ErrEmptySequence)
	})

	t.Run("Join rejects missing chunk", func(t *testing.T) {
		chunks := chunker.Split(data, 100)
		_, err := chunker.Join(chunks[:3])
		require.ErrorIs(t, err, chunker.ErrBrokenSequence)
	})

	t.Run("Join rejects reordered chunks", func(t *testing.T) {
		chunks := chunker.Split(data, 100)
		chunks[1], chunks[2] = chunks[2], chunks[1]
		_, err := chunker.Join(chunks)
		require.ErrorIs(t, err, chunker.ErrBrokenSequence)
	})
}
