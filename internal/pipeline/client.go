package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/notify"
	"github.com/and161185/newsdesk/internal/session"
)

// DefaultTimeout bounds a single call when Config.Timeout is zero.
const DefaultTimeout = 60 * time.Second

const maxBodyBytes = 32 << 20

// Redirector forces the application back to its login entry point.
type Redirector interface {
	ForceLogin(ctx context.Context)
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(ctx context.Context)

func (f RedirectFunc) ForceLogin(ctx context.Context) { f(ctx) }

// Config holds pipeline settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	AllowList []Matcher         // nil means DefaultAllowList
	Transport http.RoundTripper // nil means http.DefaultTransport
}

// Client sends envelopes through the pipeline. Safe for concurrent use.
type Client struct {
	cfg      Config
	hc       *http.Client
	store    *session.Store
	notifier notify.Notifier
	redirect Redirector
	log      *zap.Logger
}

// New wires a Client. store is required; nil notifier, redirector or logger
// fall back to no-ops.
func New(cfg Config, store *session.Store, n notify.Notifier, r Redirector, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.AllowList == nil {
		cfg.AllowList = DefaultAllowList()
	}
	if n == nil {
		n = notify.Discard
	}
	if r == nil {
		r = RedirectFunc(func(context.Context) {})
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:      cfg,
		hc:       &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		store:    store,
		notifier: n,
		redirect: r,
		log:      log,
	}
}

// SetRedirector replaces the redirect target. Call it before the first Send;
// the navigator is usually built after the client.
func (c *Client) SetRedirector(r Redirector) {
	if r != nil {
		c.redirect = r
	}
}

// Send performs one call. On failure the returned error is an *errs.Failure;
// by then the side effects for that failure have already been applied.
func (c *Client) Send(ctx context.Context, env Envelope) (Result, error) {
	start := time.Now()
	rid := newRequestID()

	out := c.roundTrip(ctx, env, rid)
	out.Result.RequestID = rid
	c.apply(ctx, out)

	fields := []zap.Field{
		zap.String("method", methodOf(env)),
		zap.String("path", env.Path),
		zap.String("request_id", rid),
		zap.Duration("dur", time.Since(start)),
	}
	if out.OK() {
		c.log.Info("http call", append(fields, zap.Int("status", out.Result.Status))...)
		return out.Result, nil
	}
	c.log.Warn("http call failed", append(fields,
		zap.Int("status", out.Failure.Status),
		zap.Stringer("kind", out.Failure.Kind),
		zap.Error(out.Failure.Cause),
	)...)
	return Result{}, out.Failure
}

func (c *Client) roundTrip(ctx context.Context, env Envelope, rid string) Outcome {
	req, err := Prepare(ctx, c.cfg.BaseURL, env, c.store.Snapshot(), rid)
	if err != nil {
		return Reject(err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return Unreachable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil && !errors.Is(err, io.EOF) {
		return Unreachable(err)
	}
	return Interpret(env, resp.StatusCode, body, c.cfg.AllowList)
}

// apply runs the side effects in order: purge, notify, redirect.
func (c *Client) apply(ctx context.Context, out Outcome) {
	if out.PurgeSession {
		if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
			c.log.Warn("purge session", zap.Error(err))
		}
	}
	if out.Notify {
		c.notifier.Notify(notify.SeverityError, out.Failure.Message)
	}
	if out.RedirectLogin {
		c.redirect.ForceLogin(ctx)
	}
}

func newRequestID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}

var _ Sender = (*Client)(nil)

// IsFailureKind reports whether err is a pipeline failure of kind k.
func IsFailureKind(err error, k errs.Kind) bool {
	f := errs.AsFailure(err)
	return f != nil && f.Kind == k
}
