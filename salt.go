package filecrypt

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// SaltSource tells where a salt returned by SaltStore came from
type SaltSource uint8

const (
	// SaltNone means no salt is in use (unsalted engines)
	SaltNone SaltSource = iota
	// SaltLoaded means the salt was read from the persisted resource
	SaltLoaded
	// SaltGenerated means a fresh salt was minted on this call
	SaltGenerated
)

func (s SaltSource) String() string {
	switch s {
	case SaltLoaded:
		return "loaded"
	case SaltGenerated:
		return "generated"
	default:
		return "none"
	}
}

// SaltFormat selects how a newly generated salt is persisted
type SaltFormat uint8

const (
	// SaltFormatRaw stores the bare salt bytes with no header
	SaltFormatRaw SaltFormat = iota
	// SaltFormatEnvelope stores magic, version and length before the salt
	SaltFormatEnvelope
)

const (
	// SaltMagic identifies an enveloped salt file. Stored little endian it
	// reads "FSLT".
	SaltMagic = uint32(0x544C5346)

	// SaltEnvelopeVersion is the current salt envelope version
	SaltEnvelopeVersion = uint8(1)

	// saltHeaderSize is 4 bytes (magic) + 1 byte (version) + 2 bytes (length)
	saltHeaderSize = 7
)

// SaltResult is the outcome of SaltStore.ObtainSalt
type SaltResult struct {
	Salt      []byte
	Source    SaltSource
	Persisted bool // true when a generated salt was written back
}

// SaltStore loads a salt from a named resource, or mints one when the
// resource is missing or empty. The read-then-write sequence is not atomic:
// two processes creating the same resource at once can end up with
// different salts.
type SaltStore struct {
	fm      BinaryFileManager
	name    string
	persist bool
	format  SaltFormat
	random  io.Reader
}

// SaltOption configures a SaltStore
type SaltOption func(*SaltStore)

// WithPersist controls whether a generated salt is written to the resource
func WithPersist(persist bool) SaltOption {
	return func(s *SaltStore) {
		s.persist = persist
	}
}

// WithSaltFormat selects the on-disk layout for generated salts
func WithSaltFormat(format SaltFormat) SaltOption {
	return func(s *SaltStore) {
		s.format = format
	}
}

// WithRandom replaces the random source used for new salts
func WithRandom(r io.Reader) SaltOption {
	return func(s *SaltStore) {
		s.random = r
	}
}

// NewSaltStore creates a salt store for the resource name. An empty name
// uses DefaultSaltFile. Generated salts are persisted by default.
func NewSaltStore(fm BinaryFileManager, name string, opts ...SaltOption) *SaltStore {
	if name == "" {
		name = DefaultSaltFile
	}
	s := &SaltStore{
		fm:      fm,
		name:    name,
		persist: true,
		format:  SaltFormatRaw,
		random:  rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the salt resource name
func (s *SaltStore) Name() string {
	return s.name
}

// ObtainSalt returns the persisted salt, or generates a new SaltSize salt
// when the resource does not exist or is empty. Existing content is
// returned as is, apart from unwrapping an envelope; its length is not
// checked. Only the generate path writes, and only when persisting.
func (s *SaltStore) ObtainSalt() (SaltResult, error) {
	if s.fm == nil {
		return SaltResult{}, ErrNilFileManager
	}

	data, err := s.load()
	if err != nil {
		return SaltResult{}, err
	}
	if len(data) > 0 {
		return SaltResult{Salt: DecodeSalt(data), Source: SaltLoaded}, nil
	}

	salt, err := GenerateSalt(s.random)
	if err != nil {
		return SaltResult{}, err
	}
	result := SaltResult{Salt: salt, Source: SaltGenerated}
	if s.persist {
		if err := s.fm.Write(s.name, EncodeSalt(salt, s.format)); err != nil {
			return SaltResult{}, err
		}
		result.Persisted = true
	}
	return result, nil
}

// load reads the resource; a missing resource yields nil data
func (s *SaltStore) load() ([]byte, error) {
	data, err := s.fm.Read(s.name)
	if err == nil {
		return data, nil
	}
	if IsNotFound(err) || isNotExist(err) {
		return nil, nil
	}
	if IsIOError(err) {
		return nil, err
	}
	return nil, NewIOError("read", s.name, err)
}

// GenerateSalt reads SaltSize bytes from r, or crypto/rand when r is nil
func GenerateSalt(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// EncodeSalt lays out salt for persistence in the given format
func EncodeSalt(salt []byte, format SaltFormat) []byte {
	if format != SaltFormatEnvelope {
		out := make([]byte, len(salt))
		copy(out, salt)
		return out
	}

	buf := new(bytes.Buffer)
	buf.Grow(saltHeaderSize + len(salt))
	binary.Write(buf, binary.LittleEndian, SaltMagic)
	buf.WriteByte(SaltEnvelopeVersion)
	binary.Write(buf, binary.LittleEndian, uint16(len(salt)))
	buf.Write(salt)
	return buf.Bytes()
}

// DecodeSalt returns the salt stored in data. Content that is a complete,
// well-formed envelope is unwrapped; anything else is a legacy raw salt.
func DecodeSalt(data []byte) []byte {
	if salt, ok := parseSaltEnvelope(data); ok {
		return salt
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

func parseSaltEnvelope(data []byte) ([]byte, bool) {
	if len(data) <= saltHeaderSize {
		return nil, false
	}
	if binary.LittleEndian.Uint32(data[0:4]) != SaltMagic {
		return nil, false
	}
	if data[4] == 0 || data[4] > SaltEnvelopeVersion {
		return nil, false
	}
	size := int(binary.LittleEndian.Uint16(data[5:7]))
	if size == 0 || saltHeaderSize+size != len(data) {
		return nil, false
	}
	salt := make([]byte, size)
	copy(salt, data[saltHeaderSize:])
	return salt, true
}
