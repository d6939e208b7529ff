package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/klabast/wb-services/canada-holidays/internal/app"
	"golang.org/x/term"
)

// HashPassword handles the hash-password subcommand
func HashPassword(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	configPath := configFlag(fs)
	file := fs.String("file", "", "Auth file to write (default: auth.file from config)")
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	insecureUnmask := fs.Bool("insecure-unmask-password", false, "Show password as plain text (INSECURE!)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: canada-holidays hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates an auth file with a hashed password (Argon2id) protecting admin routes.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  HOLIDAYS_AUTH_FILE    Path to auth file (default: ./auth.secret)\n")
	}
	_ = fs.Parse(args)

	path := *file
	if path == "" {
		cfg, err := app.LoadConfig(resolveConfigPath(*configPath))
		if err != nil {
			return err
		}
		path = cfg.Auth.File
	}

	fmt.Print("Enter username: ")
	var username string
	if _, err := fmt.Scanln(&username); err != nil {
		return fmt.Errorf("error reading username: %w", err)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	var password, passwordConfirm string
	if *insecureUnmask {
		fmt.Fprintf(os.Stderr, "WARNING: Password will be visible on screen!\n")
		fmt.Print("Enter password:   ")
		if _, err := fmt.Scanln(&password); err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
		fmt.Print("Confirm password: ")
		if _, err := fmt.Scanln(&passwordConfirm); err != nil {
			return fmt.Errorf("error reading password confirmation: %w", err)
		}
	} else {
		var err error
		if password, err = readPasswordWithMask("Enter password:   "); err != nil {
			return err
		}
		if passwordConfirm, err = readPasswordWithMask("Confirm password: "); err != nil {
			return err
		}
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != passwordConfirm {
		return errors.New("passwords do not match")
	}

	return app.CreateAuthFile(path, username, password, *overwrite)
}

// errInterrupted is returned when the prompt is cancelled with Ctrl+C
var errInterrupted = errors.New("interrupted")

// readPasswordWithMask reads a password echoing an asterisk per character
func readPasswordWithMask(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// not a terminal, fall back to hidden input
		password, err := term.ReadPassword(fd)
		fmt.Println()
		return string(password), err
	}
	defer term.Restore(fd, oldState)

	var password []byte
	reader := bufio.NewReader(os.Stdin)
	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		switch char {
		case '\n', '\r':
			fmt.Print("\r\n")
			return string(password), nil
		case 127, 8: // backspace
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Print("\b \b")
			}
		case 3: // Ctrl+C
			fmt.Print("\r\n")
			return "", errInterrupted
		default:
			if char >= 32 && char <= 126 {
				password = append(password, byte(char))
				fmt.Print("*")
			}
		}
	}

	fmt.Print("\r\n")
	return string(password), nil
}
