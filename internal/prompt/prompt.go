// Package prompt asks the operator for portal credentials and whether a
// failed step should be tried again.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	appErrors "github.com/noah-isme/gradesync/pkg/errors"
)

var readPasswordFunc = term.ReadPassword // mockable

// Prompter reads answers from in and writes questions to out. Passwords are
// read from the terminal behind fd without echo.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// New builds a Prompter on arbitrary streams.
func New(in io.Reader, out io.Writer, fd int) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// Stdio builds a Prompter on the process terminal.
func Stdio() *Prompter {
	return New(os.Stdin, os.Stdout, int(os.Stdin.Fd()))
}

// Credentials asks for a username and a password, repeating each question
// until the answer is not blank. A non-blank defaultUser is offered and
// taken on an empty answer.
func (p *Prompter) Credentials(service, defaultUser string) (string, string, error) {
	fmt.Fprintf(p.out, "***%s***\n", service)

	var username string
	for username == "" {
		if defaultUser != "" {
			fmt.Fprintf(p.out, "Username [%s]: ", defaultUser)
		} else {
			fmt.Fprint(p.out, "Username: ")
		}
		line, err := p.readLine()
		if err != nil {
			return "", "", err
		}
		username = line
		if username == "" {
			username = defaultUser
		}
	}

	var password string
	for password == "" {
		fmt.Fprint(p.out, "Password: ")
		raw, err := readPasswordFunc(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}
	return username, password, nil
}

// Confirm asks a yes/no question until it gets "y" or "n".
func (p *Prompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s (y/n)? ", question)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// Retry runs fn until it succeeds or the operator declines another try. A
// refusal returns ErrAborted wrapping the last failure.
func (p *Prompter) Retry(ctx context.Context, step string, fn func(ctx context.Context) error) error {
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		fmt.Fprintf(p.out, "Error while trying to %s: %v\n", step, err)
		again, promptErr := p.Confirm("Try again")
		if promptErr != nil || !again {
			return appErrors.WithCause(appErrors.ErrAborted, err)
		}
	}
}

// readLine returns the next trimmed line. End of input aborts the prompt.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", appErrors.ErrAborted
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
