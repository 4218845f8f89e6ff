package filecrypt

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// MagicBytes identifies payloads sealed by this package (ASCII: "FCRY")
	MagicBytes = uint32(0x46435259)

	// CurrentVersion is the current payload format version
	CurrentVersion = uint8(1)

	// MinHeaderSize is 4 bytes (magic) + 1 byte (version) + 1 byte (cipher)
	MinHeaderSize = 6
)

// PayloadHeader precedes the ciphertext of every sealed payload. The
// encoded header is also the AEAD associated data, so it cannot be altered
// without failing authentication.
//
//	magic (4, big endian) | version (1) | cipher (1) | nonce | ciphertext+tag
type PayloadHeader struct {
	Magic   uint32      // Magic bytes to identify sealed payloads
	Version uint8       // Payload format version
	Cipher  CipherSuite // Cipher suite used for encryption
	Nonce   []byte      // Nonce for encryption; its size follows from Cipher
}

// NewPayloadHeader creates a new payload header with the given parameters
func NewPayloadHeader(cipher CipherSuite, nonce []byte) *PayloadHeader {
	return &PayloadHeader{
		Magic:   MagicBytes,
		Version: CurrentVersion,
		Cipher:  cipher,
		Nonce:   nonce,
	}
}

// Size returns the total size of the header in bytes
func (h *PayloadHeader) Size() int {
	return MinHeaderSize + len(h.Nonce)
}

// MarshalBinary encodes the header
func (h *PayloadHeader) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(h.Size())

	if err := binary.Write(buf, binary.BigEndian, h.Magic); err != nil {
		return nil, fmt.Errorf("failed to write magic bytes: %w", err)
	}
	buf.WriteByte(h.Version)
	buf.WriteByte(byte(h.Cipher))
	buf.Write(h.Nonce)
	return buf.Bytes(), nil
}

// ParsePayload splits a sealed payload into its header and the remaining
// ciphertext. The returned header aliases payload.
func ParsePayload(payload []byte) (*PayloadHeader, []byte, error) {
	if !HasPayloadMagic(payload) {
		return nil, nil, ErrInvalidHeader
	}

	h := &PayloadHeader{
		Magic:   binary.BigEndian.Uint32(payload[0:4]),
		Version: payload[4],
		Cipher:  CipherSuite(payload[5]),
	}
	if h.Version == 0 || h.Version > CurrentVersion {
		return nil, nil, ErrUnsupportedVersion
	}

	nonceSize, err := NonceSize(h.Cipher)
	if err != nil || h.Cipher == CipherAuto {
		return nil, nil, ErrUnsupportedCipher
	}
	if len(payload) < MinHeaderSize+nonceSize {
		return nil, nil, fmt.Errorf("%w: payload too short for nonce", ErrInvalidHeader)
	}
	h.Nonce = payload[MinHeaderSize : MinHeaderSize+nonceSize]
	return h, payload[MinHeaderSize+nonceSize:], nil
}

// HasPayloadMagic reports whether payload starts with MagicBytes
func HasPayloadMagic(payload []byte) bool {
	return len(payload) >= MinHeaderSize && binary.BigEndian.Uint32(payload[0:4]) == MagicBytes
}
