package browser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/knowfox/comet/gemini"
)

// DefaultMaxRedirects bounds 3x chains. The protocol itself puts no
// limit on redirect depth; the session does, so a misconfigured server
// cannot loop a request forever.
const DefaultMaxRedirects = 5

// Fetcher is the transport the session drives. *gemini.Client
// implements it; tests substitute their own.
type Fetcher interface {
	Fetch(ctx context.Context, rawurl, query string) (*gemini.Response, error)
}

// Config carries the session's tunable knobs.
type Config struct {
	// MaxRedirects bounds the length of a 3x chain. Zero or negative
	// means DefaultMaxRedirects.
	MaxRedirects int
}

// Session owns the single in-flight request and the back stack. All
// network work runs on one background goroutine per request; starting
// a new request synchronously tears the previous one down first, so at
// most one connection is ever open and a slow old response can never
// overwrite a newer page.
type Session struct {
	fetcher      Fetcher
	sink         Sink
	log          *slog.Logger
	maxRedirects int

	// navMu serializes navigation: tearing down the previous scope
	// and installing the next one happen as a single step. It is
	// never taken by the request goroutine, which only uses mu.
	navMu sync.Mutex

	mu      sync.Mutex
	history History
	current *requestScope
}

// NewSession wires a session to its transport and presentation sink.
func NewSession(fetcher Fetcher, sink Sink, log *slog.Logger, cfg Config) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}
	return &Session{
		fetcher:      fetcher,
		sink:         sink,
		log:          log,
		maxRedirects: cfg.MaxRedirects,
	}
}

// requestScope groups one request's resources: its cancellation
// context and the response body registered under it. Cancelling the
// scope closes the body, which closes the connection and unblocks any
// read in progress.
type requestScope struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.Mutex
	body io.Closer
}

// track registers the response body so shutdown can close it. A body
// arriving after cancellation is closed immediately.
func (sc *requestScope) track(body io.Closer) {
	sc.mu.Lock()
	if sc.ctx.Err() != nil {
		sc.mu.Unlock()
		body.Close()
		return
	}
	sc.body = body
	sc.mu.Unlock()
}

func (sc *requestScope) untrack() {
	sc.mu.Lock()
	sc.body = nil
	sc.mu.Unlock()
}

// shutdown cancels the scope, closes its connection and waits for the
// background goroutine to finish. After it returns nothing from this
// request can reach the sink and no socket is left open.
func (sc *requestScope) shutdown() {
	sc.cancel()
	sc.mu.Lock()
	if sc.body != nil {
		sc.body.Close()
		sc.body = nil
	}
	sc.mu.Unlock()
	<-sc.done
}

// Visit starts a fetch for rawurl, superseding any request already in
// flight. It returns once the new request is underway; results arrive
// through the sink.
func (s *Session) Visit(rawurl string) {
	s.initiate(rawurl, "")
}

// Back discards the current page and revisits the one before it.
func (s *Session) Back() error {
	s.mu.Lock()
	target, err := s.history.PopForBack()
	if err == nil {
		// The revisit pushes the page again when it renders.
		s.history.Drop()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.initiate(target, "")
	return nil
}

// BackEnabled reports whether there is a page to go back to.
func (s *Session) BackEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.BackEnabled()
}

// CurrentURL returns the most recently shown URL, or "".
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current()
}

// Shutdown cancels any in-flight request and releases its resources.
func (s *Session) Shutdown() {
	s.navMu.Lock()
	defer s.navMu.Unlock()
	s.uninstallCurrent()
}

// initiate is the single entry point for new navigation. The previous
// scope is fully torn down (connection closed, goroutine drained)
// before the new one is installed; navMu makes that swap one atomic
// step even when two navigations race, so two scopes are never live
// at once. Must not be called from the session goroutine itself:
// follow-up fetches (redirects, input answers) stay inside the
// running scope instead.
func (s *Session) initiate(rawurl, query string) {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	s.uninstallCurrent()

	ctx, cancel := context.WithCancel(context.Background())
	scope := &requestScope{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	s.mu.Lock()
	s.current = scope
	s.mu.Unlock()

	go s.run(scope, rawurl, query)
}

// uninstallCurrent removes and fully tears down the current scope.
// Caller holds navMu.
func (s *Session) uninstallCurrent() {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()
	if prev != nil {
		prev.shutdown()
	}
}

func (s *Session) run(scope *requestScope, rawurl, query string) {
	defer close(scope.done)
	defer scope.cancel()

	s.emit(scope, func(k Sink) { k.SetStatus("Loading " + rawurl) })
	s.fetchLoop(scope, rawurl, query)

	s.mu.Lock()
	addr := s.history.Current()
	s.mu.Unlock()
	if addr == "" {
		addr = rawurl
	}
	s.emit(scope, func(k Sink) {
		k.SetAddress(addr)
		k.SetStatus("Ready")
	})
}

// fetchLoop performs the initial fetch and any follow-ups the
// dispatcher asks for (redirect targets, input answers). Follow-ups
// reuse the same scope; each response's connection is closed before
// the next one is opened.
func (s *Session) fetchLoop(scope *requestScope, rawurl, query string) {
	redirects := 0
	for {
		res, err := s.fetcher.Fetch(scope.ctx, rawurl, query)
		if err != nil {
			if scope.ctx.Err() != nil {
				return
			}
			s.log.Warn("fetch failed", "url", rawurl, "error", err)
			msg := describeFetchError(err)
			s.emit(scope, func(k Sink) { k.ShowError(msg) })
			return
		}
		scope.track(res.Body)

		next := s.dispatch(scope, res, &redirects)

		res.Body.Close()
		scope.untrack()
		if next == nil || scope.ctx.Err() != nil {
			return
		}
		rawurl, query = next.url, next.query
	}
}

// emit delivers a sink call unless the scope has been cancelled. A
// superseded request goes quiet the moment its scope is cancelled;
// nothing from it reaches the presentation surface afterwards.
func (s *Session) emit(scope *requestScope, fn func(Sink)) {
	if scope.ctx.Err() != nil {
		return
	}
	fn(s.sink)
}

func describeFetchError(err error) string {
	switch {
	case errors.Is(err, gemini.ErrConnection):
		return "Connection failed: " + err.Error()
	case errors.Is(err, gemini.ErrProtocol):
		return "Server closed the connection before sending a header"
	case errors.Is(err, gemini.ErrMalformedHeader), errors.Is(err, gemini.ErrHeaderTooLong):
		return "Malformed response header: " + err.Error()
	default:
		return "Request failed: " + err.Error()
	}
}
