package prompt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gradesync/pkg/errors"
)

func withPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := readPasswordFunc
	t.Cleanup(func() { readPasswordFunc = orig })
	readPasswordFunc = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more passwords")
		}
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func TestCredentialsRepeatsBlankAnswers(t *testing.T) {
	withPasswords(t, "", "secret")
	out := &bytes.Buffer{}
	p := New(strings.NewReader("\n  teacher \n"), out, 0)

	user, pass, err := p.Credentials("Portal", "")
	require.NoError(t, err)
	assert.Equal(t, "teacher", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, 2, strings.Count(out.String(), "Username: "))
	assert.Equal(t, 2, strings.Count(out.String(), "Password: "))
}

func TestCredentialsDefaultUser(t *testing.T) {
	withPasswords(t, "secret")
	p := New(strings.NewReader("\n"), &bytes.Buffer{}, 0)

	user, _, err := p.Credentials("Portal", "prefilled")
	require.NoError(t, err)
	assert.Equal(t, "prefilled", user)
}

func TestCredentialsEndOfInput(t *testing.T) {
	p := New(strings.NewReader(""), &bytes.Buffer{}, 0)
	_, _, err := p.Credentials("Portal", "")
	assert.ErrorIs(t, err, appErrors.ErrAborted)
}

func TestRetryUntilSuccess(t *testing.T) {
	out := &bytes.Buffer{}
	p := New(strings.NewReader("maybe\ny\n"), out, 0)

	calls := 0
	err := p.Retry(context.Background(), "list classes", func(context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("timeout")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, out.String(), "Error while trying to list classes: timeout")
	assert.Equal(t, 2, strings.Count(out.String(), "Try again (y/n)? "))
}

func TestRetryAbortKeepsCause(t *testing.T) {
	p := New(strings.NewReader("n\n"), &bytes.Buffer{}, 0)
	cause := appErrors.ErrInvalidCredentials

	err := p.Retry(context.Background(), "log in", func(context.Context) error { return cause })
	assert.ErrorIs(t, err, appErrors.ErrAborted)
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	assert.Equal(t, appErrors.ExitAborted, appErrors.ExitCode(err))
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(strings.NewReader("y\n"), &bytes.Buffer{}, 0)

	err := p.Retry(ctx, "log in", func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
}
