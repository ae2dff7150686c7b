// Package source retrieves match payloads from the upstream feed or from
// local files.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/pkg/logger"
	"github.com/okian/libero/pkg/metrics"
)

const (
	userAgent      = "libero-proxy"
	defaultTimeout = 10 * time.Second
	defaultMaxBody = 16 << 20
)

// Fetcher performs rate limited GET requests against the upstream.
type Fetcher struct {
	matchURL string
	client   *http.Client
	limiter  *rate.Limiter
	timeout  time.Duration
	maxBody  int64
	log      logger.Logger
}

// NewFetcher builds a fetcher. matchURL is the match endpoint; it may be
// empty when only raw proxying is needed.
func NewFetcher(matchURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		matchURL: strings.TrimSpace(matchURL),
		client:   &http.Client{},
		limiter:  rate.NewLimiter(rate.Limit(2), 4),
		timeout:  defaultTimeout,
		maxBody:  defaultMaxBody,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.GetOrNop().Named("source")
	}
	return f
}

// Response is an upstream body with its content type.
type Response struct {
	Body        []byte
	ContentType string
}

// Get fetches an absolute http(s) URL.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (Response, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Response{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	start := time.Now()
	resp, err := f.get(ctx, u.String())
	ms := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordUpstreamFetch("error", ms)
		f.log.Warn(ctx, "upstream fetch failed", logger.String("url", u.Redacted()), logger.Error(err))
		return Response{}, err
	}
	metrics.RecordUpstreamFetch("ok", ms)
	return resp, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := f.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBody+1))
	if err != nil {
		return Response{}, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if int64(len(body)) > f.maxBody {
		return Response{}, fmt.Errorf("%w: %w: limit %d bytes", ErrUpstream, ErrBodyTooLarge, f.maxBody)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return Response{}, fmt.Errorf("%w: %s", ErrUpstreamStatus, res.Status)
	}
	return Response{Body: body, ContentType: res.Header.Get("Content-Type")}, nil
}

// MatchURL returns the upstream URL of a match id.
func (f *Fetcher) MatchURL(matchID string) (string, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return "", ErrEmptyMatchID
	}
	if f.matchURL == "" {
		return "", ErrNotConfigured
	}
	u, err := url.Parse(f.matchURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	q := u.Query()
	q.Set("match_id", matchID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchMatch downloads and decodes one match by id.
func (f *Fetcher) FetchMatch(ctx context.Context, matchID string) (*model.Match, error) {
	target, err := f.MatchURL(matchID)
	if err != nil {
		return nil, err
	}
	resp, err := f.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	m, err := model.DecodeMatch(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("match %s: %w", matchID, err)
	}
	return m, nil
}
