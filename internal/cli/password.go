package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptPostgresPassword reads a password from the terminal without echo
// and exposes it as $PGPASSWORD, which pgx picks up when the connection
// string carries none. Refuses to run when stdin is not a terminal so CI
// pipelines fail fast instead of hanging.
func promptPostgresPassword() error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("--pg-prompt-password requires an interactive terminal; use $PGPASSWORD instead")
	}

	fmt.Fprint(os.Stderr, "PostgreSQL password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	return os.Setenv("PGPASSWORD", string(password))
}
