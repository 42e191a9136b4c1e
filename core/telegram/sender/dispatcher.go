// Package sender runs outbound Telegram calls on a worker pool so
// handlers return as soon as the reply is queued. Transient network
// failures are retried with backoff inside a per-task deadline.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zhukata/shopbot/core/logger"
	"github.com/zhukata/shopbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed reports an Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull reports a saturated queue; the caller should send
	// synchronously instead.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options tunes the dispatcher. Zero values select the defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration caps the total time one task may spend retrying.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type task struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher is the worker pool. Create it with NewDispatcher and stop
// it with Close; queued tasks are drained before Close returns.
type Dispatcher struct {
	opts  Options
	tasks chan task
	stop  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
	fails atomic.Uint64
}

// NewDispatcher starts the workers immediately.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		opts: opts.withDefaults(),
		stop: make(chan struct{}),
	}
	d.tasks = make(chan task, d.opts.QueueSize)

	d.wg.Add(d.opts.Workers)
	for i := 0; i < d.opts.Workers; i++ {
		go func() {
			defer d.wg.Done()
			for t := range d.tasks {
				d.execute(t)
			}
		}()
	}
	return d
}

// Enqueue schedules run for asynchronous execution. run must be safe to
// retry. Never blocks: a full queue returns ErrQueueFull.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	select {
	case <-d.stop:
		return ErrQueueClosed
	default:
	}
	select {
	case d.tasks <- task{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount reports how many tasks exhausted their retries.
func (d *Dispatcher) ErrorCount() uint64 { return d.fails.Load() }

// Close stops accepting tasks and waits until the queue drains.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.stop)
		close(d.tasks)
		d.wg.Wait()
	})
}

func (d *Dispatcher) execute(t task) {
	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	deadline, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	logger.Debug(ctx, "tg.sender", "send.start", t.attrs()...)

	attempts := d.opts.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := deadline.Err(); err != nil {
			lastErr = err
			break
		}

		err := t.run()
		if err == nil {
			attrs := t.attrs()
			if attempt > 1 {
				attrs = append(attrs, slog.Int("attempt", attempt))
			}
			attrs = append(attrs, slog.Int64("elapsed_ms", logger.Took(start).Milliseconds()))
			logger.Debug(ctx, "tg.sender", "send.success", attrs...)
			return
		}
		lastErr = err

		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}
		if !d.backoff(ctx, deadline, t, attempt) {
			lastErr = deadline.Err()
			break
		}
	}

	d.fails.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail",
		append(t.attrs(),
			slog.String("error", redactToken(lastErr)),
			slog.String("error_kind", classifyError(lastErr)),
			slog.Int("attempts", attempts),
			slog.Int64("elapsed_ms", logger.Took(start).Milliseconds()),
		)...,
	)
}

// backoff sleeps attempt*RetryBackoff and reports false when the task
// deadline expired first.
func (d *Dispatcher) backoff(ctx, deadline context.Context, t task, attempt int) bool {
	delay := time.Duration(attempt) * d.opts.RetryBackoff
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-deadline.Done():
		return false
	case <-timer.C:
		logger.Debug(ctx, "tg.sender", "send.retry.backoff",
			append(t.attrs(),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)...,
		)
		return true
	}
}

func (t task) attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("action", t.action)}
	if t.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", t.endpoint))
	}
	return attrs
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "dial"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
		if kind := classifyError(urlErr.Err); kind != "" && kind != "unknown" {
			return kind
		}
	}
	switch status := apiStatus(err); {
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// redactToken strips bot tokens out of error text before logging.
// Telegram includes the full request URL in some transport errors.
func redactToken(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

func apiStatus(err error) int {
	if err == nil {
		return 0
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}
	// Telebot formats unknown API errors with a trailing "(400)".
	msg := err.Error()
	open, closeIdx := strings.LastIndex(msg, "("), strings.LastIndex(msg, ")")
	if open >= 0 && closeIdx > open+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : closeIdx])); convErr == nil {
			return code
		}
	}
	return 0
}
