package chat

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultUnreadInterval is the cadence of the unread-count refresh.
	DefaultUnreadInterval = 60 * time.Second
	// DefaultMessageInterval is the cadence of the active-conversation
	// message refresh while a detail view is open.
	DefaultMessageInterval = 10 * time.Second
)

// Poller drives the periodic refreshes the UI relies on instead of a push
// channel: a slow unread-count loop and a faster message loop for the active
// conversation. Stale responses are handled by the store's sequence and
// identity guards, so the poller never cancels an in-flight request.
type Poller struct {
	store *Store
	log   *logrus.Entry

	unreadInterval  time.Duration
	messageInterval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	kick    chan struct{}
	running bool
}

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithUnreadInterval overrides the unread-count cadence.
func WithUnreadInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.unreadInterval = d }
}

// WithMessageInterval overrides the active-conversation cadence.
func WithMessageInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.messageInterval = d }
}

// NewPoller creates a Poller for the given store.
func NewPoller(store *Store, opts ...PollerOption) *Poller {
	p := &Poller{
		store:           store,
		log:             logrus.WithField("component", "chat-poller"),
		unreadInterval:  DefaultUnreadInterval,
		messageInterval: DefaultMessageInterval,
		kick:            make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the two refresh loops. Calling Start on a running poller is
// a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{}, 2)
	p.running = true

	go p.unreadLoop(ctx)
	go p.messageLoop(ctx)
}

// Stop clears both timers. Responses of requests still in flight are
// discarded by the store's guards.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.cancel()
	<-p.done
	<-p.done
	p.running = false
}

// Kick requests an immediate unread-count refresh, e.g. right after a
// message was sent elsewhere in the UI.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
		// a refresh is already queued
	}
}

func (p *Poller) unreadLoop(ctx context.Context) {
	defer func() { p.done <- struct{}{} }()

	ticker := time.NewTicker(p.unreadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.kick:
		}

		if err := p.store.RefreshUnread(ctx); err != nil && ctx.Err() == nil {
			p.log.WithError(err).Debug("Unread refresh failed")
		}
	}
}

func (p *Poller) messageLoop(ctx context.Context) {
	defer func() { p.done <- struct{}{} }()

	ticker := time.NewTicker(p.messageInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Only poll messages while a conversation detail view is open
		if p.store.ActiveID() == "" {
			continue
		}
		if err := p.store.RefreshActive(ctx); err != nil && ctx.Err() == nil {
			p.log.WithError(err).Debug("Active conversation refresh failed")
		}
	}
}
