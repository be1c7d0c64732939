package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordPrompt asks the operator for a secret without echoing it.
type PasswordPrompt func(w io.Writer, label string) (string, error)

// newTerminalPrompt reads from in without echo when it is a terminal. Piped
// input is read one line per prompt through a single buffered reader, so
// consecutive prompts see consecutive lines.
func newTerminalPrompt(in *os.File) PasswordPrompt {
	var piped *bufio.Reader
	return func(w io.Writer, label string) (string, error) {
		fmt.Fprint(w, label)
		fd := int(in.Fd())
		if term.IsTerminal(fd) {
			raw, err := term.ReadPassword(fd)
			fmt.Fprintln(w)
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			return string(raw), nil
		}

		if piped == nil {
			piped = bufio.NewReader(in)
		}
		line, err := piped.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: no input")
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

func promptNewPassword(prompt PasswordPrompt, w io.Writer) (string, error) {
	password, err := prompt(w, "Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := prompt(w, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}
