package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen_RejectsBadURLs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	client, err := Open(ctx, "")
	require.ErrorIs(t, err, ErrEmptyURL)
	require.Nil(t, client)

	for _, url := range []string{
		"http://localhost:6379",
		"localhost:6379",
		"postgres://localhost:5432",
		"redis://localhost:notaport/0",
	} {
		t.Run(url, func(t *testing.T) {
			t.Parallel()

			client, err := Open(ctx, url)
			require.ErrorIs(t, err, ErrInvalidURL)
			require.Nil(t, client)
		})
	}
}

func TestOpen_GivesUpAfterAttempts(t *testing.T) {
	t.Parallel()

	// nothing listens on port 1
	start := time.Now()
	client, err := Open(context.Background(), "redis://127.0.0.1:1/0",
		WithRetry(2, 10*time.Millisecond),
		WithTimeouts(50*time.Millisecond, 50*time.Millisecond),
	)
	require.ErrorIs(t, err, ErrConnectionFailed)
	require.Nil(t, client)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestSleep(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)

	require.NoError(t, sleep(context.Background(), time.Millisecond))
}

func TestPing_NilClient(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Ping(nil)(context.Background()), ErrUnavailable)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestClose(t *testing.T) {
	t.Parallel()

	var closed bool
	hook := Close(closerFunc(func() error {
		closed = true
		return nil
	}))
	require.NoError(t, hook(context.Background()))
	require.True(t, closed)

	boom := errors.New("boom")
	require.ErrorIs(t, Close(closerFunc(func() error { return boom }))(context.Background()), boom)
}
