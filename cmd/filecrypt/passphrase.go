package main

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"golang.org/x/term"
)

// zeroBytes overwrites a byte slice with zeros
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// readPassphrase returns the passphrase from the environment, or prompts for
// it. New encryptions ask twice so a typo cannot lock the files away.
func readPassphrase(opts *options, confirm bool) ([]byte, error) {
	if opts.Passphrase != "" {
		return []byte(opts.Passphrase), nil
	}

	passphrase, err := readPassword("Passphrase: ")
	if err != nil {
		return nil, err
	}
	if !confirm {
		return passphrase, nil
	}

	again, err := readPassword("Confirm passphrase: ")
	if err != nil {
		zeroBytes(passphrase)
		return nil, err
	}
	defer zeroBytes(again)

	if !bytes.Equal(passphrase, again) {
		zeroBytes(passphrase)
		return nil, fmt.Errorf("passphrases do not match")
	}
	return passphrase, nil
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	var passphrase []byte
	var err error

	if term.IsTerminal(int(syscall.Stdin)) {
		passphrase, err = term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
	} else {
		// STDIN is piped, the terminal may still be reachable
		tty, ttyErr := os.Open("/dev/tty")
		if ttyErr != nil {
			return nil, fmt.Errorf("cannot read passphrase: STDIN is not a terminal. Set %s or %s", PassphraseEnvVar, PassphraseEnvVarPrefix)
		}
		defer tty.Close()

		passphrase, err = term.ReadPassword(int(tty.Fd()))
		fmt.Fprintln(os.Stderr)
	}

	if err != nil {
		return nil, err
	}
	return passphrase, nil
}
