package invoicedocx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Fetcher defaults.
const (
	DefaultFetchTimeout  = 15 * time.Second
	DefaultFetchAttempts = 3
	DefaultFetchBackoff  = 250 * time.Millisecond
	DefaultMaxImageBytes = 10 << 20

	// browserUserAgent mimics a desktop browser for hosts that reject Go clients.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	breakerTripFailures = 5
	breakerOpenTimeout  = 30 * time.Second
	breakerInterval     = 60 * time.Second
)

// StateHook is notified when the fetch circuit breaker changes state.
type StateHook func(from, to gobreaker.State)

// ImageFetcher downloads overlay images over HTTP with bounded retries and a
// circuit breaker, and returns them PNG-encoded.
type ImageFetcher struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[Image]
	attempts  int
	backoff   time.Duration
	maxBytes  int64
	logger    *zap.Logger
	stateHook StateHook
}

// FetcherOption configures an ImageFetcher.
type FetcherOption func(*ImageFetcher)

// WithHTTPClient replaces the HTTP client. Its Timeout bounds each attempt.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *ImageFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithFetchTimeout bounds each attempt. Panics if d <= 0.
func WithFetchTimeout(d time.Duration) FetcherOption {
	if d <= 0 {
		panic("invoicedocx: WithFetchTimeout duration must be positive")
	}
	return func(f *ImageFetcher) {
		f.client.Timeout = d
	}
}

// WithRetry sets the attempt count and base backoff, doubled per retry.
func WithRetry(attempts int, backoff time.Duration) FetcherOption {
	return func(f *ImageFetcher) {
		if attempts > 0 {
			f.attempts = attempts
		}
		if backoff >= 0 {
			f.backoff = backoff
		}
	}
}

// WithMaxImageBytes caps the size of a downloaded image.
func WithMaxImageBytes(n int64) FetcherOption {
	return func(f *ImageFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithFetchLogger sets the fetcher logger.
func WithFetchLogger(l *zap.Logger) FetcherOption {
	return func(f *ImageFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithBreakerStateHook registers a circuit breaker state observer.
func WithBreakerStateHook(h StateHook) FetcherOption {
	return func(f *ImageFetcher) {
		f.stateHook = h
	}
}

// NewImageFetcher creates an ImageFetcher with defaults: 15s per attempt,
// 3 attempts, 250ms base backoff, 10 MiB cap.
func NewImageFetcher(opts ...FetcherOption) *ImageFetcher {
	f := &ImageFetcher{
		client:   &http.Client{Timeout: DefaultFetchTimeout},
		attempts: DefaultFetchAttempts,
		backoff:  DefaultFetchBackoff,
		maxBytes: DefaultMaxImageBytes,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.breaker = gobreaker.NewCircuitBreaker[Image](gobreaker.Settings{
		Name:     "asset-fetch",
		Interval: breakerInterval,
		Timeout:  breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if f.stateHook != nil {
				f.stateHook(from, to)
			}
		},
		// Decode failures and cancellations do not count against the host.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrAssetDecode) || errors.Is(err, context.Canceled)
		},
	})
	return f
}

// Fetch downloads source and returns it as a PNG image.
// Errors wrap ErrAssetFetch.
func (f *ImageFetcher) Fetch(ctx context.Context, source string) (Image, error) {
	if err := validateSource(source); err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrAssetFetch, err)
	}

	img, err := f.breaker.Execute(func() (Image, error) {
		return f.fetchWithRetry(ctx, source)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Image{}, fmt.Errorf("%w: %s: %w", ErrAssetFetch, redact(source), err)
		}
		return Image{}, err
	}
	return img, nil
}

func (f *ImageFetcher) fetchWithRetry(ctx context.Context, source string) (Image, error) {
	var lastErr error
	for attempt := 0; attempt < f.attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, f.backoff<<(attempt-1)); err != nil {
				return Image{}, fmt.Errorf("%w: %s: %w", ErrAssetFetch, redact(source), err)
			}
		}

		data, err := f.get(ctx, source)
		if err == nil {
			return decodeImage(data)
		}
		lastErr = err
		f.logger.Debug("asset fetch attempt failed",
			zap.String("source", redact(source)),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if !retryable(ctx, err) {
			break
		}
	}
	return Image{}, fmt.Errorf("%w: %s: %w", ErrAssetFetch, redact(source), lastErr)
}

// statusError is a non-200 response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

var errImageTooLarge = errors.New("image exceeds size limit")

func (f *ImageFetcher) get(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, errImageTooLarge
	}
	return data, nil
}

// retryable reports whether another attempt may succeed.
// Server errors, throttling and transport failures are retried.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, errImageTooLarge) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError || se.code == http.StatusTooManyRequests
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// decodeImage verifies data is a supported raster and returns it as PNG.
// PNG input is kept byte-for-byte; other formats are re-encoded.
func decodeImage(data []byte) (Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w: %v", ErrAssetFetch, ErrAssetDecode, err)
	}
	if format != "png" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return Image{}, fmt.Errorf("%w: %w: re-encoding %s: %v", ErrAssetFetch, ErrAssetDecode, format, err)
		}
		data = buf.Bytes()
	}
	return Image{Data: data, Ext: "png", ContentType: "image/png"}, nil
}

// validateSource accepts absolute http and https URLs only.
func validateSource(source string) error {
	u, err := url.Parse(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssetSource, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q (must be http or https)", ErrAssetSource, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrAssetSource)
	}
	return nil
}

// redact drops the query string, which may carry access tokens.
func redact(source string) string {
	u, err := url.Parse(source)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
