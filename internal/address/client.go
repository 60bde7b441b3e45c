// Package address wraps the external address suggester for the interactive
// location field. Keystrokes can outrun responses, so results are applied in
// last-request-wins order and identical in-flight lookups are collapsed.
package address

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"sentinela/internal/platform/metrics"
	"sentinela/internal/ports"
	dErrors "sentinela/pkg/domain-errors"
	"sentinela/pkg/platform/sentinel"
)

// minQueryLen is the shortest input worth sending to the suggester.
const minQueryLen = 3

// maxCandidates caps how many suggestions are kept per lookup.
const maxCandidates = 5

// Client serializes suggestion results. Latest always reflects the newest
// request that completed, never a stale response that arrived late.
type Client struct {
	suggester ports.AddressSuggester
	group     singleflight.Group
	seq       atomic.Uint64

	mu        sync.RWMutex
	latestSeq uint64
	latest    []ports.Suggestion

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(suggester ports.AddressSuggester, opts ...Option) (*Client, error) {
	if suggester == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "address client requires a suggester")
	}
	c := &Client{
		suggester: suggester,
		logger:    slog.Default(),
		tracer:    otel.Tracer("sentinela/address"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Suggest looks up candidates for a partial input. Inputs shorter than three
// characters clear the current candidates without calling the suggester.
func (c *Client) Suggest(ctx context.Context, partial string) ([]ports.Suggestion, error) {
	trimmed := strings.TrimSpace(partial)
	seq := c.seq.Add(1)

	if len([]rune(trimmed)) < minQueryLen {
		c.apply(seq, nil)
		return nil, nil
	}

	v, err, _ := c.group.Do(trimmed, func() (any, error) {
		ctx, span := c.tracer.Start(ctx, "address.suggest")
		defer span.End()
		return c.suggester.Suggest(ctx, trimmed)
	})
	if err != nil {
		c.metrics.IncCollaboratorFailure("address_suggester")
		c.logger.WarnContext(ctx, "address suggestion failed", "error", err)
		return nil, wrapCollaborator(err, "address suggestion")
	}

	candidates, _ := v.([]ports.Suggestion)
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	out := make([]ports.Suggestion, len(candidates))
	copy(out, candidates)

	c.apply(seq, out)
	return out, nil
}

// Latest returns the candidates of the newest completed request.
func (c *Client) Latest() []ports.Suggestion {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ports.Suggestion, len(c.latest))
	copy(out, c.latest)
	return out
}

// apply installs a result unless a newer request already did.
func (c *Client) apply(seq uint64, candidates []ports.Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq <= c.latestSeq {
		return
	}
	c.latestSeq = seq
	c.latest = candidates
}

func wrapCollaborator(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrRateLimited):
		return dErrors.Wrap(err, dErrors.CodeRateLimited, msg)
	case errors.Is(err, sentinel.ErrMalformedResponse):
		return dErrors.Wrap(err, dErrors.CodeMalformedResponse, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	}
}
