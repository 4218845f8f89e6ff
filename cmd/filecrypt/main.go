// Command filecrypt encrypts and decrypts files with a passphrase.
//
//	filecrypt encrypt [flags] FILE...
//	filecrypt decrypt [flags] FILE...
//
// FILE names are given without the .enc suffix, relative to --root. The
// passphrase is read from ENCRYPTION_KEY or FILECRYPT_PASSPHRASE, and
// prompted for on the terminal otherwise.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/absfs/filecrypt"
	"github.com/rs/zerolog"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors caused by bad invocation
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr, nil)
		return exitUsage
	}

	command := args[0]
	switch command {
	case "encrypt", "decrypt":
	case "help", "-h", "--help":
		printUsage(stdout, nil)
		return exitOK
	default:
		printUsage(stderr, nil)
		fmt.Fprintf(stderr, "error: unknown command: %s\n", command)
		return exitUsage
	}

	opts, files, err := loadOptions(command, args[1:], stdout)
	if err != nil {
		if errors.Is(err, errHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitError
	}

	log := newLogger(opts.LogLevel, opts.LogFormat, stderr)
	if err := execute(ctx, command, opts, files, log); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func execute(ctx context.Context, command string, opts *options, files []string, log zerolog.Logger) error {
	disk, root, err := openRoot(opts.Root)
	if err != nil {
		return fmt.Errorf("invalid root: %w", err)
	}
	fm, err := filecrypt.NewFileManager(disk)
	if err != nil {
		return err
	}

	names, err := toFSPaths(root, files)
	if err != nil {
		return err
	}
	saltFile := opts.SaltFile
	if opts.UseSalt {
		if saltFile, err = toFSPath(root, opts.SaltFile); err != nil {
			return err
		}
	}

	passphrase, err := readPassphrase(opts, command == "encrypt")
	if err != nil {
		return err
	}
	if len(passphrase) == 0 {
		log.Warn().Msg("empty passphrase: anyone can decrypt these files")
	}
	if !opts.UseSalt {
		log.Warn().Msg("salting disabled: the key is the padded passphrase with no stretching")
		if len(passphrase) > filecrypt.KeySize {
			log.Warn().Int("length", len(passphrase)).Msgf("passphrase bytes past %d are ignored without --salt", filecrypt.KeySize)
		}
	}

	cfg := &filecrypt.Config{
		UseSalt: opts.UseSalt,
		Cipher:  opts.Cipher,
	}
	if opts.UseSalt {
		cfg.Salt = filecrypt.NewSaltStore(fm, saltFile,
			filecrypt.WithPersist(opts.SaveSalt),
			filecrypt.WithSaltFormat(opts.SaltFormat),
		)
	}

	log.Debug().Bool("salt", opts.UseSalt).Str("cipher", opts.Cipher.String()).Msg("deriving key")
	engine, err := filecrypt.NewCipherEngine(passphrase, cfg)
	if err != nil {
		return err
	}
	if opts.UseSalt {
		log.Debug().Str("salt_file", saltFile).Stringer("source", engine.SaltSource()).Msg("salt ready")
		if engine.SaltSource() == filecrypt.SaltGenerated && !opts.SaveSalt {
			log.Warn().Msg("generated salt was not saved; files encrypted now cannot be decrypted later")
		}
	}

	enc, err := filecrypt.NewFileEncryptor(fm, engine,
		filecrypt.WithDeleteOriginal(opts.DeleteOriginal),
		filecrypt.WithWorkers(opts.Workers),
		filecrypt.WithLogger(log),
	)
	if err != nil {
		return err
	}

	if command == "encrypt" {
		_, err = enc.EncryptFiles(ctx, names)
	} else {
		_, err = enc.DecryptFiles(ctx, names)
	}
	return err
}
