package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"
)

func readTerminalPassword(prompt string) ([]byte, bool, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, false, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, true, fmt.Errorf("read passphrase: %w", err)
	}
	return pass, true, nil
}

// passphrase resolves the passphrase from the flag, the environment, a
// terminal prompt, or the first line of stdin, in that order.
func (a *app) passphrase(flag string) ([]byte, error) {
	if flag != "" {
		return []byte(flag), nil
	}
	if a.settings.Passphrase != "" {
		return []byte(a.settings.Passphrase), nil
	}

	if a.cfg.ReadPassword != nil {
		pass, ok, err := a.cfg.ReadPassword("Passphrase: ")
		if err != nil {
			return nil, err
		}
		if ok {
			return pass, nil
		}
	}

	if a.cfg.Stdin == nil {
		return []byte{}, nil
	}
	sc := bufio.NewScanner(a.cfg.Stdin)
	if sc.Scan() {
		return []byte(sc.Text()), nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	return []byte{}, nil
}
