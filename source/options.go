package source

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/agentuity/go-paramcache/logger"
)

// DefaultQueryTimeout is the per-operation timeout for sources that perform I/O.
const DefaultQueryTimeout = 5 * time.Second

// DefaultHTTPRetries is the number of attempts the HTTP source makes on retryable responses.
const DefaultHTTPRetries = 3

type config struct {
	queryTimeout   time.Duration
	prefix         string
	logger         logger.Logger
	httpClient     *http.Client
	token          string
	retries        int
	withDecryption bool
	tlsConfig      *tls.Config
	dialTimeout    time.Duration
}

// Option configures a source.
type Option func(*config)

func defaultConfig() config {
	return config{
		queryTimeout:   DefaultQueryTimeout,
		logger:         logger.NewConsoleLogger(logger.LevelNone),
		httpClient:     http.DefaultClient,
		retries:        DefaultHTTPRetries,
		withDecryption: true,
		dialTimeout:    5 * time.Second,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithQueryTimeout sets the per-operation timeout for Redis, SQLite, etcd and HTTP.
// Defaults to DefaultQueryTimeout. Zero disables it.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithPrefix namespaces parameter names. Applies to Redis and etcd.
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}

// WithLogger sets the logger. Defaults to a silent logger.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithHTTPClient overrides http.DefaultClient for the HTTP source.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// WithToken sets the bearer token sent by the HTTP source.
func WithToken(token string) Option {
	return func(c *config) { c.token = token }
}

// WithHTTPRetries sets how many attempts the HTTP source makes when the server
// responds with a retryable status. Values below 1 mean a single attempt.
func WithHTTPRetries(n int) Option {
	return func(c *config) { c.retries = n }
}

// WithDecryption controls whether SSM SecureString parameters are decrypted. Defaults to true.
func WithDecryption(decrypt bool) Option {
	return func(c *config) { c.withDecryption = decrypt }
}

// WithTLSConfig sets the client TLS configuration used when dialing etcd.
func WithTLSConfig(tc *tls.Config) Option {
	return func(c *config) { c.tlsConfig = tc }
}

// WithDialTimeout sets how long DialEtcd waits for a connection. Defaults to 5 seconds.
func WithDialTimeout(d time.Duration) Option {
	return func(c *config) { c.dialTimeout = d }
}
