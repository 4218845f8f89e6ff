package filecrypt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FileEncryptor encrypts and decrypts a list of files through a
// BinaryFileManager. The encrypted form of "name" is "name" plus the
// suffix (".enc" by default).
type FileEncryptor struct {
	fm             BinaryFileManager
	engine         *CipherEngine
	deleteOriginal bool
	suffix         string
	workers        int
	log            zerolog.Logger
}

// Option configures a FileEncryptor
type Option func(*FileEncryptor)

// WithDeleteOriginal removes the input of each file once its output has
// been written: the plaintext after encryption, the .enc file after
// decryption.
func WithDeleteOriginal(deleteOriginal bool) Option {
	return func(f *FileEncryptor) {
		f.deleteOriginal = deleteOriginal
	}
}

// WithSuffix changes the suffix naming encrypted files
func WithSuffix(suffix string) Option {
	return func(f *FileEncryptor) {
		f.suffix = suffix
	}
}

// WithWorkers processes up to n files at once. The default is 1.
func WithWorkers(n int) Option {
	return func(f *FileEncryptor) {
		f.workers = n
	}
}

// WithLogger sets the logger; the default discards everything
func WithLogger(log zerolog.Logger) Option {
	return func(f *FileEncryptor) {
		f.log = log
	}
}

// NewFileEncryptor creates a batch encryptor
func NewFileEncryptor(fm BinaryFileManager, engine *CipherEngine, opts ...Option) (*FileEncryptor, error) {
	if fm == nil {
		return nil, ErrNilFileManager
	}
	if engine == nil {
		return nil, ErrNilEngine
	}

	f := &FileEncryptor{
		fm:      fm,
		engine:  engine,
		suffix:  DefaultSuffix,
		workers: 1,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.suffix == "" {
		return nil, NewValidationError("suffix", f.suffix, "suffix cannot be empty")
	}
	if err := ValidateSize(f.workers, "workers", 1, MaxWorkers); err != nil {
		return nil, err
	}
	return f, nil
}

// EncryptedName returns the name of the encrypted form of name
func (f *FileEncryptor) EncryptedName(name string) string {
	return name + f.suffix
}

// FileResult describes what happened to one file
type FileResult struct {
	Name    string // Logical file name
	Input   string // Path that was read
	Output  string // Path that was written, empty if skipped
	Bytes   int    // Size of the output
	Skipped bool   // Input was missing and nothing was done
	Deleted bool   // Input was deleted afterwards
	Err     error
}

// BatchResult collects the results of EncryptFiles or DecryptFiles in the
// order the names were given
type BatchResult struct {
	ID        string
	Operation string
	Files     []FileResult
}

// Processed returns the names whose output was written
func (r *BatchResult) Processed() []string {
	var names []string
	for _, fr := range r.Files {
		if fr.Output != "" && !fr.Skipped {
			names = append(names, fr.Name)
		}
	}
	return names
}

// Skipped returns the names that were skipped because their input was missing
func (r *BatchResult) Skipped() []string {
	var names []string
	for _, fr := range r.Files {
		if fr.Skipped {
			names = append(names, fr.Name)
		}
	}
	return names
}

// Err joins the errors of all files
func (r *BatchResult) Err() error {
	var errs []error
	for _, fr := range r.Files {
		if fr.Err != nil {
			errs = append(errs, fr.Err)
		}
	}
	return errors.Join(errs...)
}

// EncryptFile encrypts name into its encrypted name. A missing input is
// skipped, matching how batches of optional files are handled.
func (f *FileEncryptor) EncryptFile(name string) (FileResult, error) {
	return f.encryptFile(name, f.log)
}

// DecryptFile decrypts the encrypted form of name back into name. A missing
// encrypted file is a *ResourceNotFoundError.
func (f *FileEncryptor) DecryptFile(name string) (FileResult, error) {
	return f.decryptFile(name, f.log)
}

// EncryptFiles encrypts every name. All files are attempted; the returned
// error joins the failures.
func (f *FileEncryptor) EncryptFiles(ctx context.Context, names []string) (*BatchResult, error) {
	return f.runBatch(ctx, "encrypt", names, f.encryptFile)
}

// DecryptFiles decrypts every name. All files are attempted; the returned
// error joins the failures.
func (f *FileEncryptor) DecryptFiles(ctx context.Context, names []string) (*BatchResult, error) {
	return f.runBatch(ctx, "decrypt", names, f.decryptFile)
}

func (f *FileEncryptor) runBatch(ctx context.Context, op string, names []string, fn func(string, zerolog.Logger) (FileResult, error)) (*BatchResult, error) {
	result := &BatchResult{
		ID:        uuid.NewString(),
		Operation: op,
		Files:     make([]FileResult, len(names)),
	}
	log := f.log.With().Str("batch", result.ID).Str("op", op).Logger()
	log.Debug().Int("files", len(names)).Int("workers", f.workers).Msg("batch started")

	errs := runJobs(ctx, len(names), f.workers, func(i int) error {
		fr, err := fn(names[i], log)
		result.Files[i] = fr
		return err
	})
	for i, err := range errs {
		result.Files[i].Name = names[i]
		result.Files[i].Err = err
	}

	err := result.Err()
	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Int("processed", len(result.Processed())).Int("skipped", len(result.Skipped())).Msg("batch finished")
	return result, err
}

func (f *FileEncryptor) encryptFile(name string, log zerolog.Logger) (FileResult, error) {
	fr := FileResult{Name: name, Input: name}
	if err := ValidateFileName(name, f.suffix); err != nil {
		return fr, err
	}

	plaintext, err := f.fm.Read(name)
	if err != nil {
		if IsNotFound(err) || isNotExist(err) {
			log.Warn().Str("file", name).Msg("input missing, skipped")
			fr.Skipped = true
			return fr, nil
		}
		return fr, ioErr("read", name, err)
	}

	payload, err := f.engine.Encrypt(plaintext)
	if err != nil {
		return fr, fmt.Errorf("encrypt %s: %w", name, err)
	}

	output := f.EncryptedName(name)
	if err := f.fm.Write(output, payload); err != nil {
		return fr, ioErr("write", output, err)
	}
	fr.Output, fr.Bytes = output, len(payload)

	if f.deleteOriginal {
		if err := f.fm.Delete(name); err != nil {
			return fr, deleteErr(name, err)
		}
		fr.Deleted = true
	}

	log.Info().Str("file", name).Str("output", output).Int("bytes", fr.Bytes).Bool("deleted", fr.Deleted).Msg("encrypted file")
	return fr, nil
}

func (f *FileEncryptor) decryptFile(name string, log zerolog.Logger) (FileResult, error) {
	input := f.EncryptedName(name)
	fr := FileResult{Name: name, Input: input}
	if err := ValidateFileName(name, f.suffix); err != nil {
		return fr, err
	}

	payload, err := f.fm.Read(input)
	if err != nil {
		if IsNotFound(err) {
			return fr, err
		}
		if isNotExist(err) {
			return fr, NewNotFoundError(input, err)
		}
		return fr, ioErr("read", input, err)
	}

	plaintext, err := f.engine.Decrypt(payload)
	if err != nil {
		if IsAuthenticationError(err) {
			return fr, NewAuthenticationError(input)
		}
		return fr, fmt.Errorf("decrypt %s: %w", input, err)
	}

	if err := f.fm.Write(name, plaintext); err != nil {
		return fr, ioErr("write", name, err)
	}
	fr.Output, fr.Bytes = name, len(plaintext)

	if f.deleteOriginal {
		if err := f.fm.Delete(input); err != nil {
			return fr, deleteErr(input, err)
		}
		fr.Deleted = true
	}

	log.Info().Str("file", input).Str("output", name).Int("bytes", fr.Bytes).Bool("deleted", fr.Deleted).Msg("decrypted file")
	return fr, nil
}

// ioErr keeps collaborator errors that are already classified and wraps
// the rest
func ioErr(op, path string, err error) error {
	if IsIOError(err) || IsNotFound(err) || IsValidationError(err) {
		return err
	}
	return NewIOError(op, path, err)
}

// deleteErr reports a failed delete of an input whose output was already
// written, always as an IOError for the "delete" operation
func deleteErr(path string, err error) error {
	var ie *IOError
	if errors.As(err, &ie) && ie.Operation == "delete" {
		return err
	}
	return NewIOError("delete", path, err)
}
