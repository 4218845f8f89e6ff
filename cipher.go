package filecrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// newAESGCM creates an AES-256-GCM AEAD
func newAESGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("AES-256 requires a %d-byte key, got %d bytes", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

// newChaCha20Poly1305 creates a ChaCha20-Poly1305 AEAD
func newChaCha20Poly1305(key []byte) (cipher.AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("ChaCha20-Poly1305 requires a %d-byte key, got %d bytes",
			chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}
	return aead, nil
}

// newAEAD creates the AEAD for an authenticated-encryption cipher suite
func newAEAD(suite CipherSuite, key []byte) (cipher.AEAD, error) {
	switch suite.resolve() {
	case CipherAES256GCM:
		return newAESGCM(key)
	case CipherChaCha20Poly1305:
		return newChaCha20Poly1305(key)
	default:
		return nil, ErrUnsupportedCipher
	}
}

// NonceSize returns the nonce size of an AEAD cipher suite
func NonceSize(suite CipherSuite) (int, error) {
	switch suite.resolve() {
	case CipherAES256GCM:
		return 12, nil // GCM standard nonce size
	case CipherChaCha20Poly1305:
		return chacha20poly1305.NonceSize, nil
	default:
		return 0, ErrUnsupportedCipher
	}
}

// GenerateNonce generates a random nonce for the given cipher
func GenerateNonce(suite CipherSuite) ([]byte, error) {
	size, err := NonceSize(suite)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}
