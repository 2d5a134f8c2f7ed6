package execution

import (
	"context"
	"sync"
)

type fakeChannel struct {
	mu     sync.Mutex
	name   string
	sent   []string
	closed bool
}

func newFakeChannel(name string) *fakeChannel {
	return &fakeChannel{name: name}
}

func (c *fakeChannel) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *fakeChannel) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

func (c *fakeChannel) Send(_ context.Context, command string) (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrChannelClosed
	}
	c.sent = append(c.sent, command)
	done := make(chan struct{})
	close(done)
	return done, nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func fakeFactory(created *[]*fakeChannel) ChannelFactory {
	return func(name string) (Channel, error) {
		ch := newFakeChannel(name)
		*created = append(*created, ch)
		return ch, nil
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  interface{ Write([]byte) (int, error) }
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
