package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"
)

var ErrCancelled = errors.New("cancelled")

// WaitForCancel returns a context that is canceled on Ctrl+C
func WaitForCancel(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// IsTerminal reports whether v is an *os.File attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StdinIsTerminal reports whether prompts can be answered interactively.
func StdinIsTerminal() bool {
	return IsTerminal(os.Stdin)
}

// Confirm prompts the user for a yes/no answer. On a terminal a single key
// press answers; otherwise a line is read from stdin.
func Confirm(prompt string) (bool, error) {
	if !StdinIsTerminal() {
		return ConfirmLine(os.Stdin, os.Stdout, prompt)
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return false, err
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	fmt.Print(prompt + " (y/n): ")

	for {
		b := make([]byte, 1)
		_, err := os.Stdin.Read(b)
		if err != nil {
			return false, err
		}

		if b[0] == 3 { // Ctrl+C
			fmt.Print("^C\r\n")
			return false, ErrCancelled
		}

		char := strings.ToLower(string(b[0]))
		if char == "y" {
			fmt.Print("y\r\n")
			return true, nil
		}
		if char == "n" {
			fmt.Print("n\r\n")
			return false, nil
		}
	}
}

// ConfirmLine reads one answer line from r. Only "y" and "yes" confirm.
func ConfirmLine(r io.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprint(w, prompt+" (y/n): ")
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
