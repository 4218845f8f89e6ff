package filecrypt

import (
	"fmt"
	"strings"
)

const (
	// SaltSize is the size of a freshly generated salt in bytes
	SaltSize = 16

	// KeySize is the size of every derived key (AES-256, ChaCha20, Fernet)
	KeySize = 32

	// PBKDF2Iterations is the fixed PBKDF2-HMAC-SHA256 iteration count for
	// salted key derivation. Changing it changes every derived key.
	PBKDF2Iterations = 480000

	// UnsaltedPadByte fills short passphrases on the unsalted path
	UnsaltedPadByte = ' '

	// DefaultSaltFile is the salt resource name used when none is given
	DefaultSaltFile = "salt"

	// DefaultSuffix is appended to a file name to name its encrypted form
	DefaultSuffix = ".enc"
)

// CipherSuite represents the encryption algorithm to use
type CipherSuite uint8

const (
	// CipherAuto selects AES-256-GCM
	CipherAuto CipherSuite = iota
	// CipherAES256GCM uses AES-256 with Galois/Counter Mode
	CipherAES256GCM
	// CipherChaCha20Poly1305 uses ChaCha20 stream cipher with Poly1305 MAC
	CipherChaCha20Poly1305
	// CipherFernet produces Fernet tokens (AES-128-CBC + HMAC-SHA256),
	// readable by Fernet implementations in other languages. Only use it
	// to exchange files with tools that speak Fernet.
	CipherFernet
)

// String returns the string representation of the cipher suite
func (c CipherSuite) String() string {
	switch c {
	case CipherAuto:
		return "auto"
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	case CipherFernet:
		return "fernet"
	default:
		return "unknown"
	}
}

// ParseCipherSuite parses the names produced by CipherSuite.String
func ParseCipherSuite(name string) (CipherSuite, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return CipherAuto, nil
	case "aes-256-gcm", "aes256gcm", "aes":
		return CipherAES256GCM, nil
	case "chacha20-poly1305", "chacha20poly1305", "chacha":
		return CipherChaCha20Poly1305, nil
	case "fernet":
		return CipherFernet, nil
	default:
		return CipherAuto, NewValidationError("cipher", name, "unsupported cipher suite")
	}
}

// resolve maps CipherAuto to the concrete default suite
func (c CipherSuite) resolve() CipherSuite {
	if c == CipherAuto {
		return CipherAES256GCM
	}
	return c
}

// Config contains configuration for a CipherEngine
type Config struct {
	// UseSalt enables PBKDF2 key stretching with a salt obtained from Salt.
	// When false the passphrase is padded or truncated to KeySize bytes;
	// see DeriveUnsaltedKey for why that path is discouraged.
	UseSalt bool

	// Salt supplies the salt when UseSalt is set
	Salt *SaltStore

	// Cipher suite used by Encrypt. Decrypt accepts every suite.
	Cipher CipherSuite
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.UseSalt && c.Salt == nil {
		return NewValidationError("salt", nil, "salt store is required when salting is enabled")
	}
	switch c.Cipher {
	case CipherAuto, CipherAES256GCM, CipherChaCha20Poly1305, CipherFernet:
	default:
		return NewValidationError("cipher", c.Cipher, fmt.Sprintf("unsupported cipher suite %d", c.Cipher))
	}
	return nil
}
