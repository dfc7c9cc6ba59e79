package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// SupportLink is the deep link every support-derived alert points at, and
// half of the poller's dedup key.
const SupportLink = "/suporte"

// DefaultPollInterval matches the dashboard's support polling cadence.
const DefaultPollInterval = 10 * time.Second

// Thread is the boundary view of a support conversation.
type Thread struct {
	ID          string
	Subject     string
	UnreadCount int
}

// ThreadLister fetches the open support threads for the current identity.
// Implemented by the API client.
type ThreadLister interface {
	ListThreads(ctx context.Context) ([]Thread, error)
}

// Poller turns unread support activity into Store entries on a fixed
// interval, once immediately on start.
//
// The dedup key is deliberately approximate: a thread is considered
// already represented when any existing unread notification's message
// contains the thread's subject as a substring. This tolerates the unread
// count changing between polls without re-alerting, at the cost of not
// distinguishing two distinct threads with an identical subject. The
// upstream data model does not expose a stable thread key end-to-end, so a
// stronger key is intentionally not attempted here.
type Poller struct {
	store    *Store
	threads  ThreadLister
	logger   *slog.Logger
	interval time.Duration

	mu     sync.Mutex
	handle *Handle
}

// Handle controls one polling run. Cancel is idempotent and returns after
// the polling goroutine has fully stopped.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Cancel stops the run deterministically; no fetch is issued afterwards.
func (h *Handle) Cancel() {
	h.once.Do(h.cancel)
	<-h.done
}

// NewPoller constructs a Poller. A non-positive interval falls back to
// DefaultPollInterval.
func NewPoller(store *Store, threads ThreadLister, logger *slog.Logger, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{store: store, threads: threads, logger: logger, interval: interval}
}

// Start begins polling for the given identity, cancelling any previous
// run first. An empty identity is equivalent to Stop: polling under an
// absent identity is a correctness bug, not a degraded mode.
func (p *Poller) Start(identity string) *Handle {
	p.Stop()
	if identity == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &Handle{cancel: cancel, done: make(chan struct{})}

	p.mu.Lock()
	p.handle = handle
	p.mu.Unlock()

	go p.run(ctx, handle)
	return handle
}

// Stop cancels the current run, if any.
func (p *Poller) Stop() {
	p.mu.Lock()
	handle := p.handle
	p.handle = nil
	p.mu.Unlock()
	if handle != nil {
		handle.Cancel()
	}
}

// Scheduled reports whether a polling run is currently active. Exposed so
// the cancellation contract stays test-visible.
func (p *Poller) Scheduled() bool {
	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()
	if handle == nil {
		return false
	}
	select {
	case <-handle.done:
		return false
	default:
		return true
	}
}

func (p *Poller) run(ctx context.Context, handle *Handle) {
	defer close(handle.done)

	p.pollOnce(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce fetches the thread list and emits an alert per thread with
// unread activity that is not already represented. A failed poll is logged
// and retried on the next tick; it never surfaces to the user and never
// touches existing notifications.
func (p *Poller) pollOnce(ctx context.Context) {
	threads, err := p.threads.ListThreads(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("support poll", slog.Any("error", err))
		}
		return
	}
	for _, thread := range threads {
		if thread.UnreadCount <= 0 {
			continue
		}
		subject := thread.Subject
		if p.store.HasUnreadMatching(func(message string) bool {
			return strings.Contains(message, subject)
		}) {
			continue
		}
		message := fmt.Sprintf("Você tem %d nova(s) mensagem(ns) em \"%s\".", thread.UnreadCount, subject)
		if _, err := p.store.Add(ctx, CategoryInfo, "Suporte", message, SupportLink); err != nil {
			p.logger.Warn("add support notification", slog.Any("error", err))
		}
	}
}
