package automod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"agora/internal/metrics"
	"agora/internal/tracing"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrMalformedResponse is returned when the classifier answers with an
// unexpected shape. Callers treat it like any other classifier failure.
var ErrMalformedResponse = errors.New("malformed classifier response")

// Classifier decides whether text is hate speech.
type Classifier interface {
	Classify(ctx context.Context, text string) (flagged bool, err error)
}

// leveledZerolog adapts zerolog to retryablehttp's LeveledLogger.
type leveledZerolog struct {
	inner zerolog.Logger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l leveledZerolog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Info(msg string, keysAndValues ...any) {
	l.inner.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug().Fields(keysAndValues).Msg(msg)
}

// Option configures the classifier HTTP client.
type Option func(*retryablehttp.Client)

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(maxRetries int) Option {
	return func(client *retryablehttp.Client) {
		client.RetryMax = maxRetries
	}
}

// WithRetryWait sets the minimum and maximum wait between retries.
func WithRetryWait(waitMin, waitMax time.Duration) Option {
	return func(client *retryablehttp.Client) {
		client.RetryWaitMin = waitMin
		client.RetryWaitMax = waitMax
	}
}

// Client calls an OpenAI-moderation compatible endpoint:
//
//	POST {endpoint} {"input": text} -> {"results": [{"flagged": bool}]}
type Client struct {
	endpoint string
	apiKey   string
	http     *retryablehttp.Client
}

// Ensure Client implements Classifier at compile time.
var _ Classifier = (*Client)(nil)

// NewClient creates a classifier client. Connection errors and 5xx answers
// are retried a bounded number of times before the call fails.
func NewClient(endpoint, apiKey string, options ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Transport = otelhttp.NewTransport(http.DefaultTransport)
	retryClient.HTTPClient.Timeout = 15 * time.Second
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledZerolog{inner: log.With().Str("subsystem", "classifier").Logger()})

	for _, option := range options {
		option(retryClient)
	}

	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     retryClient,
	}
}

type classifyRequest struct {
	Input string `json:"input"`
}

type classifyResponse struct {
	Results []struct {
		Flagged *bool `json:"flagged"`
	} `json:"results"`
}

// Classify submits text and reports whether the classifier flagged it.
// Any transport failure, non-2xx status or shape deviation is an error.
func (c *Client) Classify(ctx context.Context, text string) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.ClassifierDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(classifyRequest{Input: text})
	if err != nil {
		return false, fmt.Errorf("encode classifier request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var parsed classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Results) == 0 {
		return false, fmt.Errorf("%w: missing results", ErrMalformedResponse)
	}
	if parsed.Results[0].Flagged == nil {
		return false, fmt.Errorf("%w: missing flagged", ErrMalformedResponse)
	}
	return *parsed.Results[0].Flagged, nil
}

// tracedClassify wraps a classifier call in a span.
func tracedClassify(ctx context.Context, c Classifier, endpoint, userID, text string) (bool, error) {
	ctx, span := tracing.ClassifierSpan(ctx, endpoint, userID)
	defer span.End()

	flagged, err := c.Classify(ctx, text)
	tracing.EndWithError(span, err)
	return flagged, err
}
