package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

// UserAgent is sent with every HTTP source request.
func UserAgent() string {
	gitSHA := Commit
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				gitSHA = setting.Value
			}
		}
	}
	return "paramcache/" + Version + " (" + gitSHA + ")"
}

// HTTPError describes a non-success response from the parameter service.
type HTTPError struct {
	URL       string
	Status    int
	Body      string
	RequestID string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s returned %d (request %s)", e.URL, e.Status, e.RequestID)
}

// HTTP is a Fetcher that reads parameters from a JSON service exposing
// GET {baseURL}/parameters/{name}.
type HTTP struct {
	baseURL *url.URL
	cfg     config
	backoff time.Duration
}

var _ cache.Fetcher = (*HTTP)(nil)

// NewHTTP returns an HTTP source rooted at baseURL.
func NewHTTP(baseURL string, opts ...Option) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Newf("unsupported url scheme %q", u.Scheme)
	}
	return &HTTP{baseURL: u, cfg: applyOptions(opts), backoff: 150 * time.Millisecond}, nil
}

func (h *HTTP) parameterURL(name string) string {
	u := *h.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/parameters/" + url.PathEscape(name)
	u.RawPath = ""
	return u.String()
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	switch resp.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (h *HTTP) GetParameter(ctx context.Context, name string) (string, error) {
	p, err := h.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return p.Value, nil
}

// Get returns the full Parameter for name.
func (h *HTTP) Get(ctx context.Context, name string) (*Parameter, error) {
	if h.cfg.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.queryTimeout)
		defer cancel()
	}
	target := h.parameterURL(name)
	requestID := uuid.NewString()
	attempts := max(1, h.cfg.retries)

	var resp *http.Response
	for i := range attempts {
		req, err := h.newRequest(ctx, target, requestID)
		if err != nil {
			return nil, err
		}
		h.cfg.logger.Trace("GET %s (attempt %d, request %s)", target, i+1, requestID)
		resp, err = h.cfg.httpClient.Do(req)
		if i < attempts-1 && shouldRetry(resp, err) {
			if resp != nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
			wait := time.Duration(float64(h.backoff) * math.Pow(2, float64(i)))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, transportError(err, "GET %s", target)
		}
		break
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, transportError(err, "reading response from %s", target)
	}
	h.cfg.logger.Debug("GET %s: %s", target, resp.Status)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFoundError(&HTTPError{URL: target, Status: resp.StatusCode, Body: string(body), RequestID: requestID}, name)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, transportError(&HTTPError{URL: target, Status: resp.StatusCode, Body: string(body), RequestID: requestID}, "authorizing")
	case resp.StatusCode > 299:
		herr := &HTTPError{URL: target, Status: resp.StatusCode, Body: string(body), RequestID: requestID}
		if resp.StatusCode >= 500 {
			return nil, transportError(herr, "parameter service")
		}
		return nil, herr
	}

	var p Parameter
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errors.Wrapf(err, "decoding response from %s", target)
	}
	if p.Name == "" {
		p.Name = name
	}
	return &p, nil
}

func (h *HTTP) newRequest(ctx context.Context, target, requestID string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent())
	req.Header.Set("X-Request-Id", requestID)
	if h.cfg.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.token)
	}
	return req, nil
}
