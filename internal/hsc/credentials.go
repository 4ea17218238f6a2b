package hsc

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"astrostamps/internal/stamp"
)

// CredentialProvider supplies the account used for authenticated
// downloads. Implementations must never log or persist the password; the
// session keeps it only in its basic-auth slot for the lifetime of the
// client instance.
type CredentialProvider interface {
	Credentials() (user, password string, err error)
}

// Static returns the same credentials on every call
type Static struct {
	User     string
	Password string
}

// Credentials implements CredentialProvider
func (s Static) Credentials() (string, string, error) {
	if s.User == "" {
		return "", "", stamp.NewAuthError("username is required")
	}
	return s.User, s.Password, nil
}

// TerminalPrompt asks for the password on the controlling terminal
// without echoing it. The username must still be supplied
// programmatically.
type TerminalPrompt struct {
	User string
}

// Credentials implements CredentialProvider
func (p TerminalPrompt) Credentials() (string, string, error) {
	if p.User == "" {
		return "", "", stamp.NewAuthError("username is required")
	}
	fmt.Fprintf(os.Stderr, "Enter password for %s: ", p.User)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", "", stamp.NewAuthError("read password: " + err.Error())
	}
	return p.User, string(secret), nil
}
