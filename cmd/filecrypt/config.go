package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/absfs/filecrypt"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable that can stand in for a flag
const EnvPrefix = "FILECRYPT"

// Environment variables holding the passphrase, in lookup order
const (
	PassphraseEnvVar       = "ENCRYPTION_KEY"
	PassphraseEnvVarPrefix = EnvPrefix + "_PASSPHRASE"
)

// errHelp is returned when usage was printed on request
var errHelp = errors.New("help requested")

type options struct {
	Root           string
	UseSalt        bool
	SaltFile       string
	SaveSalt       bool
	SaltFormat     filecrypt.SaltFormat
	Cipher         filecrypt.CipherSuite
	DeleteOriginal bool
	Workers        int
	LogLevel       string
	LogFormat      string
	Passphrase     string
}

func newFlagSet(name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.BoolP("help", "h", false, "Prints this usage information.")
	flags.String("root", ".", "Directory that FILE names and the salt file are relative to.")
	flags.Bool("salt", false, "Derive the key with PBKDF2 and a stored salt. Strongly recommended.")
	flags.String("salt-file", filecrypt.DefaultSaltFile, "Name of the salt file, relative to --root.")
	flags.Bool("save-salt", true, "Write a newly generated salt to --salt-file.")
	flags.String("salt-format", "raw", "Layout of a newly written salt file: raw or envelope.")
	flags.String("cipher", filecrypt.CipherAES256GCM.String(), "Cipher to encrypt with: aes-256-gcm, chacha20-poly1305 or fernet.")
	flags.BoolP("delete-original", "d", false, "Delete each input once its output has been written.")
	flags.IntP("workers", "w", 1, "Number of files processed at once; 0 uses one per CPU.")
	flags.String("env-file", "", "Load environment variables from this file before reading the configuration.")
	flags.String("log-level", "info", "Log level: debug, info, warn or error.")
	flags.String("log-format", "console", "Log format: console or json.")
	return flags
}

// loadOptions parses the flags of a command. Flags given on the command line
// win over FILECRYPT_* environment variables, which win over flag defaults.
func loadOptions(command string, args []string, stdout io.Writer) (*options, []string, error) {
	flags := newFlagSet(command)
	if err := flags.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if help, _ := flags.GetBool("help"); help {
		printUsage(stdout, flags)
		return nil, nil, errHelp
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, nil, err
	}
	if err := v.BindEnv("passphrase", PassphraseEnvVarPrefix, PassphraseEnvVar); err != nil {
		return nil, nil, err
	}

	if envFile := v.GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	opts := &options{
		Root:       v.GetString("root"),
		SaltFile:   v.GetString("salt-file"),
		LogLevel:   v.GetString("log-level"),
		LogFormat:  v.GetString("log-format"),
		Passphrase: v.GetString("passphrase"),
	}

	var err error
	for key, dst := range map[string]*bool{
		"salt":            &opts.UseSalt,
		"save-salt":       &opts.SaveSalt,
		"delete-original": &opts.DeleteOriginal,
	} {
		if *dst, err = cast.ToBoolE(v.Get(key)); err != nil {
			return nil, nil, fmt.Errorf("%w: invalid value %q for %s", errUsage, v.Get(key), key)
		}
	}
	if opts.Workers, err = cast.ToIntE(v.Get("workers")); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid value %q for workers", errUsage, v.Get("workers"))
	}
	if opts.SaltFormat, err = parseSaltFormat(v.GetString("salt-format")); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if opts.Cipher, err = filecrypt.ParseCipherSuite(v.GetString("cipher")); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if opts.Workers < 0 {
		return nil, nil, fmt.Errorf("%w: workers cannot be negative", errUsage)
	}
	if opts.Workers == 0 {
		opts.Workers = filecrypt.DefaultWorkers()
	}
	if opts.Root == "" {
		opts.Root = "."
	}

	files := flags.Args()
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w: missing required FILE argument", errUsage)
	}
	return opts, files, nil
}

func parseSaltFormat(name string) (filecrypt.SaltFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "raw":
		return filecrypt.SaltFormatRaw, nil
	case "envelope":
		return filecrypt.SaltFormatEnvelope, nil
	default:
		return 0, fmt.Errorf("unknown salt format %q, expected raw or envelope", name)
	}
}

func printUsage(w io.Writer, flags *flag.FlagSet) {
	if flags == nil {
		flags = newFlagSet("filecrypt")
	}
	fmt.Fprintf(w, `
filecrypt encrypts files with a key derived from a passphrase, and decrypts them again.
Encrypting FILE writes FILE.enc; decrypting FILE reads FILE.enc and writes FILE.

USAGE:  filecrypt encrypt [FLAGS] FILE...
        filecrypt decrypt [FLAGS] FILE...

The passphrase is taken from %s or %s, and prompted for otherwise.
Every flag can also be set as %s_<FLAG>, for example %s_SALT_FILE.

FLAGS:
%s
SECURITY:
    Without --salt the key is the passphrase itself, padded or cut to 32 bytes. Use --salt,
and keep the salt file: files encrypted with a salt cannot be decrypted without it.
`, PassphraseEnvVar, PassphraseEnvVarPrefix, EnvPrefix, EnvPrefix, flags.FlagUsages())
}
