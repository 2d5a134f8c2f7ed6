package execution

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestShellChannel_SendRunsInOrder(t *testing.T) {
	requireBash(t)

	var out strings.Builder
	ch := NewShellChannel("ptc-1", "bash", t.TempDir(), &syncWriter{w: &out}, time.Minute, zaptest.NewLogger(t))

	first, err := ch.Send(context.Background(), "sleep 0.1; echo first")
	require.NoError(t, err)
	second, err := ch.Send(context.Background(), "echo second")
	require.NoError(t, err)

	<-first
	<-second
	require.NoError(t, ch.Close())

	text := out.String()
	assert.Contains(t, text, "\nfirst\n")
	assert.Less(t, strings.Index(text, "\nfirst\n"), strings.Index(text, "$ echo second"))
	assert.Contains(t, text, "$ echo second")
}

func TestShellChannel_CancelDoesNotInterrupt(t *testing.T) {
	requireBash(t)

	var out strings.Builder
	ch := NewShellChannel("ptc-1", "bash", t.TempDir(), &syncWriter{w: &out}, time.Minute, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = ch.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done, err := ch.Send(ctx, "sleep 0.2; echo finished")
	require.NoError(t, err)
	cancel()
	<-done

	assert.Contains(t, out.String(), "finished")
}

func TestShellChannel_Names(t *testing.T) {
	ch := NewShellChannel("ptc-1", "bash", t.TempDir(), &strings.Builder{}, 0, zaptest.NewLogger(t))
	assert.Equal(t, "ptc-1", ch.Name())
	ch.SetName("RunTask")
	assert.Equal(t, "RunTask", ch.Name())

	require.NoError(t, ch.Close())
	_, err := ch.Send(context.Background(), "true")
	assert.ErrorIs(t, err, ErrChannelClosed)
}
