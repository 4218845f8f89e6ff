// Package filecrypt provides password-based authenticated encryption of
// files stored on any AbsFs filesystem.
//
// # Overview
//
// A CipherEngine turns a passphrase into a 256-bit key once, at
// construction, and then seals and opens byte buffers with it. A SaltStore
// supplies the salt for key stretching, loading it from a named resource or
// minting (and optionally persisting) a new one. A FileEncryptor applies an
// engine to a list of files through a BinaryFileManager, writing "name.enc"
// for every "name" and back again.
//
// # Key Derivation
//
// Salted (recommended):
//   - PBKDF2-HMAC-SHA256, 480000 iterations, 16-byte salt, 32-byte key
//   - The salt must be kept: losing it makes every file unreadable
//
// Unsalted (discouraged):
//   - The passphrase itself, padded with spaces or cut to 32 bytes
//   - No stretching; bytes past the 32nd do not contribute to the key
//   - Kept only so existing files encrypted this way can still be read
//
// # Supported Cipher Suites
//
//   - AES-256-GCM (default)
//   - ChaCha20-Poly1305
//   - Fernet, for exchanging files with Fernet implementations
//
// Decrypt accepts all three regardless of the suite an engine encrypts with.
//
// # Basic Usage
//
//	disk, _ := osfs.NewFS()
//	disk.Chdir("/srv/data")
//	fm, _ := filecrypt.NewFileManager(disk)
//
//	engine, err := filecrypt.NewCipherEngine(passphrase, &filecrypt.Config{
//	    UseSalt: true,
//	    Salt:    filecrypt.NewSaltStore(fm, "salt"),
//	})
//	if err != nil {
//	    return err
//	}
//
//	enc, _ := filecrypt.NewFileEncryptor(fm, engine, filecrypt.WithDeleteOriginal(true))
//	_, err = enc.EncryptFiles(ctx, []string{"secrets.json", "tokens.db"})
//
// # Payload Format
//
// Encrypted payloads use the following format:
//   - Magic bytes (4 bytes): "FCRY" (0x46435259)
//   - Version (1 byte): Payload format version
//   - Cipher suite (1 byte): Identifies the encryption algorithm
//   - Nonce (12 bytes): Random nonce, fresh for every payload
//   - Ciphertext (variable): Encrypted data + 16-byte authentication tag
//
// The first 18 bytes are authenticated as associated data.
//
// # Salt File Format
//
// By default the salt file holds the bare 16 salt bytes. SaltFormatEnvelope
// writes "FSLT", a version byte and a 2-byte length in front of them. Both
// layouts are read transparently.
//
// # Errors
//
//   - *ResourceNotFoundError: an input that must exist does not
//   - *AuthenticationError: wrong key or modified payload (never told apart)
//   - *IOError: any other storage failure, including a failed delete after
//     a successful write
//   - *ValidationError: invalid arguments
//
// # Security Considerations
//
// Not Protected Against:
//   - Key material lingering in memory
//   - Two processes creating the same salt file at the same time
//   - Metadata leakage (file names, sizes)
package filecrypt
