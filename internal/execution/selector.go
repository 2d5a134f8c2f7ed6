package execution

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoChannel is returned when no execution channel can be obtained
var ErrNoChannel = errors.New("no execution channel available")

// ChannelFactory creates a channel with the given name
type ChannelFactory func(name string) (Channel, error)

// Selector hands out execution channels to runs. A channel is owned by at
// most one run at a time; while owned it carries the reserved name.
type Selector struct {
	reserved string
	factory  ChannelFactory
	logger   *zap.Logger

	mu      sync.Mutex
	slots   []*slot
	active  int
	created int
}

type slot struct {
	channel  Channel
	owner    string
	prevName string
}

// Lease is a run's ownership of a channel
type Lease struct {
	selector *Selector
	slot     *slot
	token    string
	once     sync.Once
}

// NewSelector creates a Selector that tags owned channels with reserved
func NewSelector(reserved string, factory ChannelFactory, logger *zap.Logger) *Selector {
	return &Selector{
		reserved: reserved,
		factory:  factory,
		logger:   logger.Named("selector"),
		active:   -1,
	}
}

// Acquire returns a lease on a free channel. The active channel is preferred,
// then any other free channel; a new channel is created when all are owned.
func (s *Selector) Acquire() (*Lease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chosen *slot
	if s.active >= 0 && s.free(s.slots[s.active]) {
		chosen = s.slots[s.active]
	} else {
		for i, sl := range s.slots {
			if s.free(sl) {
				chosen = sl
				s.active = i
				break
			}
		}
	}

	if chosen == nil {
		s.created++
		ch, err := s.factory(fmt.Sprintf("ptc-%d", s.created))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoChannel, err)
		}
		chosen = &slot{channel: ch}
		s.slots = append(s.slots, chosen)
		s.active = len(s.slots) - 1
		s.logger.Debug("channel created", zap.String("channel", ch.Name()))
	}

	lease := &Lease{selector: s, slot: chosen, token: uuid.NewString()}
	chosen.owner = lease.token
	chosen.prevName = chosen.channel.Name()
	chosen.channel.SetName(s.reserved)
	s.logger.Debug("channel acquired", zap.String("channel", chosen.prevName), zap.String("token", lease.token))
	return lease, nil
}

// free reports whether a slot is neither owned nor tagged with the reserved name
func (s *Selector) free(sl *slot) bool {
	return sl.owner == "" && sl.channel.Name() != s.reserved
}

// Channels returns every channel the selector created
func (s *Selector) Channels() []Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Channel, 0, len(s.slots))
	for _, sl := range s.slots {
		out = append(out, sl.channel)
	}
	return out
}

// Close closes every channel
func (s *Selector) Close() error {
	var errs []error
	for _, ch := range s.Channels() {
		if err := ch.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Channel returns the leased channel
func (l *Lease) Channel() Channel {
	return l.slot.channel
}

// Release gives the channel back and restores its name. Releasing twice is a no-op.
func (l *Lease) Release() {
	l.once.Do(func() {
		s := l.selector
		s.mu.Lock()
		defer s.mu.Unlock()

		if l.slot.owner != l.token {
			return
		}
		l.slot.owner = ""
		l.slot.channel.SetName(l.slot.prevName)
		s.logger.Debug("channel released", zap.String("channel", l.slot.prevName))
	})
}
