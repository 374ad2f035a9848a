// Package fetch downloads remote resources in the background. Callers poll
// with Submit, which never blocks on I/O: concurrent requests for the same
// locator share one download, completed downloads are served from a private
// temporary directory, and a failure is reported once; the locator is only
// downloaded again when it is submitted again.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ErrClosed is reported by Submit once the engine has been closed.
var ErrClosed = errors.New("fetch: engine closed")

const (
	DefaultConcurrency  = 8
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 10 * time.Millisecond
)

// Stats counts download attempts.
type Stats struct {
	Started   int64
	Succeeded int64
	Failed    int64
}

// InFlight returns the number of attempts that have not finished.
func (s Stats) InFlight() int64 {
	return s.Started - s.Succeeded - s.Failed
}

type options struct {
	downloader   Downloader
	concurrency  int64
	timeout      time.Duration
	pollInterval time.Duration
	dir          string
	log          logr.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithDownloader replaces the default http/https/file downloader.
func WithDownloader(d Downloader) Option {
	return func(o *options) { o.downloader = d }
}

// WithConcurrency caps the number of simultaneous transfers.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = int64(n)
		}
	}
}

// WithTimeout bounds each transfer. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithPollInterval sets the pause between polls in Fetch.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithDir sets the parent of the engine's private download directory.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithLogger sets the engine logger.
func WithLogger(log logr.Logger) Option {
	return func(o *options) { o.log = log }
}

type entry struct {
	status Status
	path   string
	err    error
}

// Engine owns the download table and the worker servicing Submit.
type Engine struct {
	log          logr.Logger
	downloader   Downloader
	dir          string
	timeout      time.Duration
	pollInterval time.Duration
	sem          *semaphore.Weighted

	// requests and responses form the rendezvous with the worker. callMu
	// serializes round trips so a caller always reads its own response.
	requests  chan string
	responses chan Result
	callMu    sync.Mutex

	mu    sync.Mutex
	table map[string]*entry

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error

	started, succeeded, failed atomic.Int64
}

// New creates the download directory and starts the worker.
func New(opts ...Option) (*Engine, error) {
	o := options{
		concurrency:  DefaultConcurrency,
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
		log:          logr.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.downloader == nil {
		o.downloader = DefaultDownloader("")
	}

	dir, err := os.MkdirTemp(o.dir, "tilemenu-fetch-")
	if err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)
	e := &Engine{
		log:          o.log,
		downloader:   o.downloader,
		dir:          dir,
		timeout:      o.timeout,
		pollInterval: o.pollInterval,
		sem:          semaphore.NewWeighted(o.concurrency),
		requests:     make(chan string, 1),
		responses:    make(chan Result, 1),
		table:        make(map[string]*entry),
		ctx:          gctx,
		cancel:       cancel,
		group:        group,
		done:         make(chan struct{}),
	}
	go e.run()
	e.log.V(1).Info("fetch engine started", "dir", dir, "concurrency", o.concurrency, "timeout", o.timeout.String())
	return e, nil
}

// Dir returns the directory downloads are written to.
func (e *Engine) Dir() string {
	return e.dir
}

// Submit polls the state of locator without blocking on I/O.
//
// A locator seen for the first time is queued and reported pending; one
// already in flight is pending without a second download; a completed one is
// ready. A failed locator reports its error exactly once and its entry is
// dropped, so the following Submit queues exactly one fresh attempt. Nothing
// is retried unless it is asked for again.
func (e *Engine) Submit(locator string) Result {
	canonical, err := Canonicalize(locator)
	if err != nil {
		return Failed(err)
	}

	e.callMu.Lock()
	defer e.callMu.Unlock()

	if e.ctx.Err() != nil {
		return Failed(ErrClosed)
	}
	select {
	case <-e.done:
		return Failed(ErrClosed)
	case e.requests <- canonical:
	}
	select {
	case <-e.done:
		return Failed(ErrClosed)
	case r := <-e.responses:
		return r
	}
}

// Fetch polls locator until it resolves or ctx ends.
func (e *Engine) Fetch(ctx context.Context, locator string) (string, error) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()
	for {
		r := e.Submit(locator)
		switch r.Status {
		case StatusReady:
			return r.Path, nil
		case StatusFailed:
			return "", r.Err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stats returns a snapshot of the attempt counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Started:   e.started.Load(),
		Succeeded: e.succeeded.Load(),
		Failed:    e.failed.Load(),
	}
}

// Close cancels in-flight downloads, waits for the worker and every task to
// exit and removes the download directory. It is safe to call more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.cancel()
		<-e.done
		_ = e.group.Wait()
		if err := os.RemoveAll(e.dir); err != nil {
			e.closeErr = fmt.Errorf("remove download directory: %w", err)
		}
		stats := e.Stats()
		e.log.V(1).Info("fetch engine closed", "started", stats.Started, "succeeded", stats.Succeeded, "failed", stats.Failed)
	})
	return e.closeErr
}

func (e *Engine) run() {
	defer close(e.done)
	for {
		select {
		case <-e.ctx.Done():
			return
		case locator := <-e.requests:
			e.responses <- e.dispatch(locator)
		}
	}
}

func (e *Engine) dispatch(locator string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent, ok := e.table[locator]
	if !ok {
		e.spawn(locator)
		return Pending()
	}
	switch ent.status {
	case StatusReady:
		return Ready(ent.path)
	case StatusFailed:
		// Reported once; the next poll finds no entry and starts over.
		delete(e.table, locator)
		return Failed(ent.err)
	default:
		return Pending()
	}
}

// spawn replaces the table entry for locator with a pending one and starts
// its task. Callers hold e.mu.
func (e *Engine) spawn(locator string) {
	ent := &entry{status: StatusPending}
	e.table[locator] = ent
	e.group.Go(func() error {
		e.started.Add(1)
		path, err := e.transfer(locator)

		e.mu.Lock()
		if err != nil {
			ent.status, ent.err = StatusFailed, err
		} else {
			ent.status, ent.path = StatusReady, path
		}
		e.mu.Unlock()

		if err != nil {
			e.failed.Add(1)
			if e.ctx.Err() == nil {
				e.log.Error(err, "download failed", "locator", locator)
			}
			return nil
		}
		e.succeeded.Add(1)
		e.log.V(1).Info("download finished", "locator", locator, "path", path)
		return nil
	})
}

func (e *Engine) transfer(locator string) (string, error) {
	if err := e.sem.Acquire(e.ctx, 1); err != nil {
		return "", fmt.Errorf("download %s: %w", locator, err)
	}
	defer e.sem.Release(1)

	ctx := e.ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	path := filepath.Join(e.dir, uuid.NewString()+extension(locator))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", locator, err)
	}
	if err := e.downloader.Download(ctx, locator, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("download %s: %w", locator, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("download %s: %w", locator, err)
	}
	return path, nil
}
