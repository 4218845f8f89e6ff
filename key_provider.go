package filecrypt

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// KeyProvider turns a salt into a KeySize key
type KeyProvider interface {
	// DeriveKey derives an encryption key from the given salt. A nil salt
	// selects unsalted derivation.
	DeriveKey(salt []byte) ([]byte, error)
}

// PassphraseKeyProvider implements KeyProvider for a user passphrase
type PassphraseKeyProvider struct {
	passphrase []byte
}

var _ KeyProvider = (*PassphraseKeyProvider)(nil)

// NewPassphraseKeyProvider creates a key provider for passphrase. An empty
// passphrase is accepted: unsalted it yields KeySize spaces, salted it is
// stretched like any other.
func NewPassphraseKeyProvider(passphrase []byte) *PassphraseKeyProvider {
	p := make([]byte, len(passphrase))
	copy(p, passphrase)
	return &PassphraseKeyProvider{passphrase: p}
}

// DeriveKey derives the key for salt, or the unsalted key when salt is nil
func (p *PassphraseKeyProvider) DeriveKey(salt []byte) ([]byte, error) {
	if salt == nil {
		return DeriveUnsaltedKey(p.passphrase), nil
	}
	if len(salt) == 0 {
		return nil, NewValidationError("salt", 0, "salt cannot be empty")
	}
	return DeriveKey(p.passphrase, salt), nil
}

// DeriveKey stretches passphrase with PBKDF2-HMAC-SHA256 over
// PBKDF2Iterations rounds into a KeySize key.
func DeriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, PBKDF2Iterations, KeySize, sha256.New)
}

// DeriveUnsaltedKey right-pads passphrase with UnsaltedPadByte to KeySize
// bytes, or keeps only its first KeySize bytes.
//
// Discouraged: there is no stretching at all, so the key is only as strong
// as the passphrase, and everything past byte 32 of a long passphrase is
// silently ignored ("0123...31XYZ" and "0123...31ABC" give the same key).
// It is kept bit-for-bit so files encrypted this way remain readable.
func DeriveUnsaltedKey(passphrase []byte) []byte {
	key := make([]byte, KeySize)
	n := copy(key, passphrase)
	for i := n; i < KeySize; i++ {
		key[i] = UnsaltedPadByte
	}
	return key
}
