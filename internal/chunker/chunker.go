// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package chunker

import (
	"errors"
)

// Chunk is one ordered piece of a split payload.
type Chunk struct {
	Index   int // zero-based position within the sequence.
	Total   int // number of chunks in the sequence.
	Payload []byte
}

// ErrEmptySequence defines that no chunks were provided to Join.
var ErrEmptySequence = errors.New("empty chunk sequence")

// ErrBrokenSequence defines an incomplete, reordered or inconsistent chunk sequence.
var ErrBrokenSequence = errors.New("broken chunk sequence")

// Split cuts data into ordered, counted chunks of at most chunkSize bytes.
// Payloads reference the original buffer.
func Split(data []byte, chunkSize int) []Chunk {
	if chunkSize <= 0 || len(data) == 0 {
		return []Chunk{{Index: 0, Total: 1, Payload: data}}
	}

	total := (len(data) + chunkSize - 1) / chunkSize
	chunks := make([]Chunk, 0, total)
	for i := 0; i < total; i++ {
		end := (i + 1) * chunkSize
		if end > len(data) {
			end = len(data)
		}

		chunks = append(chunks, Chunk{Index: i, Total: total, Payload: data[i*chunkSize : end]})
	}

	return chunks
}

// Join reassembles a sequence produced by Split. Chunks must be complete,
// in order, and agree on the total count.
func Join(chunks []Chunk) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptySequence
	}

	var size int
	for i, chunk := range chunks {
		if chunk.Index != i || chunk.Total != len(chunks) {
			return nil, ErrBrokenSequence
		}

		size += len(chunk.Payload)
	}

	data := make([]byte, 0, size)
	for _, chunk := range chunks {
		data = append(data, chunk.Payload...)
	}

	return data, nil
}
