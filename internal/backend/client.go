package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/JKPrasad01/FoodAppFrontend/pkg/config"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/metrics"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"golang.org/x/net/publicsuffix"
)

const (
	breakerName         = "backend"
	messageReadLimit    = 512
	defaultFailureLimit = 5
)

var errServerStatus = errors.New("backend returned a server error")

// Factory builds one Client per visitor. Clients share the HTTP transport and
// the circuit breaker but each keeps its own cookie jar, so backend sessions
// never leak between visitors.
type Factory struct {
	baseURL   *url.URL
	timeout   time.Duration
	transport http.RoundTripper
	breaker   *gobreaker.CircuitBreaker
	metrics   *metrics.Storefront
	logg      *logger.Logger
}

// Option configures optional factory behavior.
type Option func(*Factory)

// WithTransport overrides the shared round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Factory) {
		if rt != nil {
			f.transport = rt
		}
	}
}

// WithMetrics records call durations and breaker transitions.
func WithMetrics(m *metrics.Storefront) Option {
	return func(f *Factory) {
		f.metrics = m
	}
}

// WithLogger logs breaker transitions.
func WithLogger(logg *logger.Logger) Option {
	return func(f *Factory) {
		f.logg = logg
	}
}

func NewFactory(cfg config.BackendConfig, opts ...Option) (*Factory, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}

	f := &Factory{
		baseURL:   base,
		timeout:   cfg.Timeout,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = defaultFailureLimit
	}
	f.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: f.onStateChange,
	})
	f.metrics.SetBreakerState(breakerName, metrics.BreakerClosed)
	return f, nil
}

func (f *Factory) onStateChange(name string, from, to gobreaker.State) {
	state := metrics.BreakerClosed
	switch to {
	case gobreaker.StateOpen:
		state = metrics.BreakerOpen
	case gobreaker.StateHalfOpen:
		state = metrics.BreakerHalfOpen
	}
	f.metrics.SetBreakerState(name, state)
	if f.logg != nil {
		ctx := f.logg.WithFields(context.Background(), map[string]any{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		})
		f.logg.Warn(ctx, "backend circuit breaker state changed")
	}
}

// NewClient returns a client with an empty cookie jar.
func (f *Factory) NewClient() (*Client, error) {
	jar, err := newSessionJar()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Transport: f.transport, Jar: jar}
	rest := resty.NewWithClient(httpClient).
		SetBaseURL(f.baseURL.String()).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if f.timeout > 0 {
		rest.SetTimeout(f.timeout)
	}

	return &Client{
		rest:    rest,
		jar:     jar,
		baseURL: f.baseURL,
		breaker: f.breaker,
		metrics: f.metrics,
	}, nil
}

// Client talks to the food-ordering backend on behalf of one visitor.
type Client struct {
	rest    *resty.Client
	jar     *sessionJar
	baseURL *url.URL
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Storefront
}

// Cookies exports the backend session cookies for persistence.
func (c *Client) Cookies() []Cookie {
	stored := c.jar.Cookies(c.baseURL)
	out := make([]Cookie, 0, len(stored))
	for _, ck := range stored {
		out = append(out, Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

// SetCookies seeds the jar with previously persisted cookies.
func (c *Client) SetCookies(cookies []Cookie) {
	if len(cookies) == 0 {
		return
	}
	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		if ck.Name == "" {
			continue
		}
		httpCookies = append(httpCookies, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	c.jar.SetCookies(c.baseURL, httpCookies)
}

// ClearCookies drops every cookie the backend has set.
func (c *Client) ClearCookies() {
	c.jar.reset()
}

type call struct {
	endpoint string
	method   string
	path     string
	body     any
}

// do executes one request through the breaker. A nil error means a 2xx answer.
func (c *Client) do(ctx context.Context, in call) ([]byte, error) {
	start := time.Now()
	var transportErr error

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req := c.rest.R().SetContext(ctx)
		if in.body != nil {
			req.SetBody(in.body)
		}
		resp, reqErr := req.Execute(in.method, in.path)
		if reqErr != nil {
			transportErr = reqErr
			if ctx.Err() != nil {
				return nil, nil
			}
			return nil, reqErr
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	outcome := "ok"
	defer func() {
		c.metrics.ObserveBackendCall(in.endpoint, outcome, time.Since(start))
	}()

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "breaker_open"
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "backend temporarily unavailable")
	case transportErr != nil:
		outcome = "transport"
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransport, transportErr, fmt.Sprintf("%s request failed", in.endpoint))
	}

	resp, _ := result.(*resty.Response)
	if resp == nil {
		outcome = "transport"
		return nil, pkgerrors.New(pkgerrors.CodeTransport, fmt.Sprintf("%s returned no response", in.endpoint))
	}

	status := resp.StatusCode()
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return resp.Body(), nil
	}

	outcome = fmt.Sprintf("%dxx", status/100)
	return nil, statusError(in.endpoint, status, resp.Body())
}

func statusError(endpoint string, status int, body []byte) error {
	message := ExtractMessage(body)
	details := map[string]any{"status": status}
	if message != "" {
		details["message"] = message
	}
	cause := fmt.Errorf("%s returned status %d", endpoint, status)

	var code pkgerrors.Code
	switch {
	case status >= http.StatusInternalServerError:
		code = pkgerrors.CodeTransport
	case status == http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case status == http.StatusForbidden:
		code = pkgerrors.CodeForbidden
	case status == http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	default:
		code = pkgerrors.CodeValidation
	}

	if message == "" {
		message = fmt.Sprintf("%s failed with status %d", endpoint, status)
	}
	return pkgerrors.Wrap(code, cause, message).WithDetails(details)
}

// ExtractMessage pulls a human readable message out of a backend error body:
// the "error" or "message" field of a JSON object, a bare JSON string, or
// short plain text.
func ExtractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
			return ""
		}
		var errText string
		if len(envelope.Error) > 0 && json.Unmarshal(envelope.Error, &errText) == nil && strings.TrimSpace(errText) != "" {
			return strings.TrimSpace(errText)
		}
		return strings.TrimSpace(envelope.Message)
	}

	if strings.HasPrefix(trimmed, "\"") {
		var text string
		if err := json.Unmarshal([]byte(trimmed), &text); err == nil {
			return strings.TrimSpace(text)
		}
		return ""
	}

	if strings.HasPrefix(trimmed, "<") || strings.HasPrefix(trimmed, "[") || len(trimmed) > messageReadLimit {
		return ""
	}
	return trimmed
}

func decode(endpoint string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, fmt.Sprintf("%s returned an unexpected payload", endpoint))
	}
	return nil
}

// sessionJar lets the cookie set be swapped out on logout while requests may
// still be in flight.
type sessionJar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
}

func newSessionJar() (*sessionJar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &sessionJar{inner: inner}, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.inner.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

func (j *sessionJar) reset() {
	fresh, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return
	}
	j.mu.Lock()
	j.inner = fresh
	j.mu.Unlock()
}
