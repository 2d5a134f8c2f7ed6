package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrChannelClosed is returned when sending to a closed channel
var ErrChannelClosed = errors.New("execution channel closed")

// Channel is a named sink that shell command lines are sent to. Sending
// does not report an exit status; the returned channel is closed once the
// command line has finished.
type Channel interface {
	Name() string
	SetName(name string)
	Send(ctx context.Context, command string) (<-chan struct{}, error)
	Close() error
}

// ShellChannel runs command lines through a shell in the workspace root,
// one at a time, writing their output to a shared writer.
type ShellChannel struct {
	shell   string
	dir     string
	out     io.Writer
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	name   string
	closed bool
	last   chan struct{}

	wg sync.WaitGroup
}

// NewShellChannel creates a ShellChannel
func NewShellChannel(name, shell, dir string, out io.Writer, timeout time.Duration, logger *zap.Logger) *ShellChannel {
	return &ShellChannel{
		name:    name,
		shell:   shell,
		dir:     dir,
		out:     out,
		timeout: timeout,
		logger:  logger.Named("channel"),
	}
}

// Name returns the channel name
func (c *ShellChannel) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// SetName renames the channel
func (c *ShellChannel) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// Send starts command in the background. A command already dispatched is
// not interrupted when ctx is cancelled; it only stops at the channel timeout.
func (c *ShellChannel) Send(ctx context.Context, command string) (<-chan struct{}, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrChannelClosed
	}
	c.wg.Add(1)
	prev := c.last
	done := make(chan struct{})
	c.last = done
	c.mu.Unlock()

	runCtx := context.WithoutCancel(ctx)

	go func() {
		defer c.wg.Done()
		defer close(done)

		// commands run in the order they were sent
		if prev != nil {
			<-prev
		}

		if c.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, c.timeout)
			defer cancel()
		}

		fmt.Fprintf(c.out, "$ %s\n", command)
		cmd := exec.CommandContext(runCtx, c.shell, "-c", command)
		cmd.Dir = c.dir
		cmd.Stdout = c.out
		cmd.Stderr = c.out

		if err := cmd.Run(); err != nil {
			c.logger.Debug("command finished with error",
				zap.String("channel", c.Name()),
				zap.String("command", command),
				zap.Error(err))
		}
	}()

	return done, nil
}

// Close rejects further commands and waits for running ones
func (c *ShellChannel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
	return nil
}
