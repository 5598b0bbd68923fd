// Command keygen prints a base64 sealing key for TOTP_ENCRYPTION_KEY.
//
// Without flags it prints a fresh random key. With -passphrase and -salt it
// derives the key deterministically so the same inputs always reproduce it.
package main

import (
	"bufio"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrymomot/devicekey/pkg/secrets"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	passphraseStdin := fs.Bool("passphrase-stdin", false, "read the passphrase from the first line of stdin")
	passphrase := fs.String("passphrase", "", "derive the key from this passphrase instead of generating one")
	salt := fs.String("salt", "", "base64 salt for derivation (16-32 bytes)")
	newSalt := fs.Bool("new-salt", false, "generate and print a random salt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *newSalt {
		s, err := secrets.RandomNonce()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, base64.StdEncoding.EncodeToString(s))
		return nil
	}

	if *passphraseStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read passphrase: %w", err)
		}
		*passphrase = strings.TrimRight(line, "\r\n")
	}

	if *passphrase == "" {
		key, err := secrets.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, secrets.EncodeKey(key))
		secrets.Wipe(key)
		return nil
	}

	saltBytes, err := base64.StdEncoding.DecodeString(*salt)
	if err != nil {
		return fmt.Errorf("decode salt: %w", err)
	}
	if len(saltBytes) < 16 || len(saltBytes) > 32 {
		return errors.New("salt must decode to 16-32 bytes")
	}

	key, err := secrets.DeriveKey([]byte(*passphrase), secrets.KDFParams{
		Salt:         saltBytes,
		OutputLength: secrets.KeySize,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, secrets.EncodeKey(key))
	secrets.Wipe(key)
	return nil
}
