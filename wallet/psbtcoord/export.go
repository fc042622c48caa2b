// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package psbtcoord

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/BoostyLabs/walletengine/internal/chunker"
	"github.com/BoostyLabs/walletengine/wallet"
)

// Format defines a PSBT export encoding.
type Format string

const (
	// FormatBase64 defines standard base64 text encoding.
	FormatBase64 Format = "base64"
	// FormatHex defines hex text encoding.
	FormatHex Format = "hex"
)

// qrChunkPayloadSize keeps each chunk within comfortable QR alphanumeric
// capacity at medium error correction.
const qrChunkPayloadSize = 500

// Export serializes the packet in the requested text encoding.
func (c *Coordinator) Export(packet *psbt.Packet, format Format) (string, error) {
	raw, err := serialize(packet)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatBase64:
		return base64.StdEncoding.EncodeToString(raw), nil
	case FormatHex:
		return hex.EncodeToString(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", wallet.ErrInvalidInput, format)
	}
}

// ExportQRChunks serializes the packet into ordered, counted text chunks
// of the form "p<index>/<total>:<base64 payload>" for QR transfer.
func (c *Coordinator) ExportQRChunks(packet *psbt.Packet) ([]string, error) {
	raw, err := serialize(packet)
	if err != nil {
		return nil, err
	}

	encoded := []byte(base64.StdEncoding.EncodeToString(raw))
	chunks := chunker.Split(encoded, qrChunkPayloadSize)

	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out = append(out, fmt.Sprintf("p%d/%d:%s", chunk.Index+1, chunk.Total, chunk.Payload))
	}

	return out, nil
}

// JoinQRChunks reassembles and parses a chunk sequence produced by
// ExportQRChunks. Chunks must be complete and in order.
func (c *Coordinator) JoinQRChunks(parts []string) (*psbt.Packet, error) {
	chunks := make([]chunker.Chunk, 0, len(parts))
	for _, part := range parts {
		chunk, err := parseQRChunk(part)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, chunk)
	}

	encoded, err := chunker.Join(chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wallet.ErrInvalidInput, err)
	}

	raw, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: decode chunk payload: %v", wallet.ErrInvalidInput, err)
	}

	packet, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
	if err != nil {
		return nil, fmt.Errorf("%w: parse psbt: %v", wallet.ErrInvalidInput, err)
	}

	return packet, nil
}

func parseQRChunk(part string) (chunker.Chunk, error) {
	withoutPrefix, ok := strings.CutPrefix(part, "p")
	if !ok {
		return chunker.Chunk{}, fmt.Errorf("%w: chunk %q has no header", wallet.ErrInvalidInput, truncate(part))
	}

	header, payload, ok := strings.Cut(withoutPrefix, ":")
	if !ok {
		return chunker.Chunk{}, fmt.Errorf("%w: chunk %q has no payload", wallet.ErrInvalidInput, truncate(part))
	}

	indexRaw, totalRaw, ok := strings.Cut(header, "/")
	if !ok {
		return chunker.Chunk{}, fmt.Errorf("%w: chunk header %q", wallet.ErrInvalidInput, header)
	}

	index, err := strconv.Atoi(indexRaw)
	if err != nil || index < 1 {
		return chunker.Chunk{}, fmt.Errorf("%w: chunk index %q", wallet.ErrInvalidInput, indexRaw)
	}

	total, err := strconv.Atoi(totalRaw)
	if err != nil || total < index {
		return chunker.Chunk{}, fmt.Errorf("%w: chunk total %q", wallet.ErrInvalidInput, totalRaw)
	}

	return chunker.Chunk{Index: index - 1, Total: total, Payload: []byte(payload)}, nil
}

func serialize(packet *psbt.Packet) ([]byte, error) {
	var buf bytes.Buffer
	if err := packet.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize psbt: %w", err)
	}

	return buf.Bytes(), nil
}

func truncate(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}

	return s
}
