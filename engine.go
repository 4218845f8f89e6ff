package filecrypt

import (
	"crypto/cipher"
	"fmt"
)

// CipherEngine derives one key at construction and uses it for every
// Encrypt and Decrypt call. It holds no mutable state afterwards and is
// safe for concurrent use.
type CipherEngine struct {
	suite  CipherSuite
	key    []byte
	salt   []byte
	source SaltSource
	aeads  map[CipherSuite]cipher.AEAD
	legacy *fernetCodec
}

// NewCipherEngine derives a key from passphrase according to cfg. With
// cfg.UseSalt the salt comes from cfg.Salt and the key from PBKDF2; this
// blocks for the full PBKDF2Iterations rounds. Without it the key comes
// from DeriveUnsaltedKey.
func NewCipherEngine(passphrase []byte, cfg *Config) (*CipherEngine, error) {
	return NewCipherEngineWithProvider(NewPassphraseKeyProvider(passphrase), cfg)
}

// NewCipherEngineWithProvider obtains the salt as cfg describes and asks
// provider for the key. The provider sees a nil salt when cfg.UseSalt is
// false.
func NewCipherEngineWithProvider(provider KeyProvider, cfg *Config) (*CipherEngine, error) {
	if provider == nil {
		return nil, ErrNilKeyProvider
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		salt   []byte
		source = SaltNone
	)
	if cfg.UseSalt {
		result, err := cfg.Salt.ObtainSalt()
		if err != nil {
			return nil, fmt.Errorf("failed to obtain salt: %w", err)
		}
		salt, source = result.Salt, result.Source
	}

	key, err := provider.DeriveKey(salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	engine, err := NewCipherEngineWithKey(key, cfg.Cipher)
	if err != nil {
		return nil, err
	}
	engine.salt = salt
	engine.source = source
	return engine, nil
}

// NewCipherEngineWithKey creates an engine for an already derived KeySize key
func NewCipherEngineWithKey(key []byte, suite CipherSuite) (*CipherEngine, error) {
	if err := ValidateKey(key, KeySize); err != nil {
		return nil, err
	}
	suite = suite.resolve()
	switch suite {
	case CipherAES256GCM, CipherChaCha20Poly1305, CipherFernet:
	default:
		return nil, NewValidationError("cipher", suite, "unsupported cipher suite")
	}

	k := make([]byte, len(key))
	copy(k, key)

	e := &CipherEngine{
		suite:  suite,
		key:    k,
		aeads:  make(map[CipherSuite]cipher.AEAD, 2),
		legacy: newFernetCodec(k),
	}
	for _, s := range []CipherSuite{CipherAES256GCM, CipherChaCha20Poly1305} {
		aead, err := newAEAD(s, k)
		if err != nil {
			return nil, fmt.Errorf("failed to create cipher engine: %w", err)
		}
		e.aeads[s] = aead
	}
	return e, nil
}

// Cipher returns the suite used by Encrypt
func (e *CipherEngine) Cipher() CipherSuite {
	return e.suite
}

// Salt returns a copy of the salt the key was derived with, or nil for
// unsalted engines
func (e *CipherEngine) Salt() []byte {
	if e.salt == nil {
		return nil
	}
	out := make([]byte, len(e.salt))
	copy(out, e.salt)
	return out
}

// SaltSource reports whether the salt was loaded or generated
func (e *CipherEngine) SaltSource() SaltSource {
	return e.source
}

// Encrypt seals plaintext under a fresh random nonce. The result carries
// everything Decrypt needs apart from the key; two calls on the same input
// never return the same bytes.
func (e *CipherEngine) Encrypt(plaintext []byte) ([]byte, error) {
	if e.suite == CipherFernet {
		return e.legacy.seal(plaintext)
	}

	aead := e.aeads[e.suite]
	nonce, err := GenerateNonce(e.suite)
	if err != nil {
		return nil, err
	}

	header, err := NewPayloadHeader(e.suite, nonce).MarshalBinary()
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(header), len(header)+len(plaintext)+aead.Overhead())
	copy(out, header)
	return aead.Seal(out, nonce, plaintext, header), nil
}

// Decrypt opens a payload produced by Encrypt with any cipher suite, or a
// Fernet token. Every failure, whether a wrong key, a modified byte or a
// malformed payload, is the same *AuthenticationError.
func (e *CipherEngine) Decrypt(payload []byte) ([]byte, error) {
	if !HasPayloadMagic(payload) {
		return e.legacy.open(payload)
	}

	header, ciphertext, err := ParsePayload(payload)
	if err != nil {
		return nil, NewAuthenticationError("")
	}
	aead, ok := e.aeads[header.Cipher]
	if !ok {
		return nil, NewAuthenticationError("")
	}

	aad := payload[:header.Size()]
	plaintext, err := aead.Open(nil, header.Nonce, ciphertext, aad)
	if err != nil {
		return nil, NewAuthenticationError("")
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}
