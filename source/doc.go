// Package source provides cache.Fetcher implementations for the stores a
// parameter can live in, plus decorators around them.
//
// Sources:
//
//   - [Memory]: a map, for tests and local overrides.
//   - [Redis]: msgpack encoded [Parameter] records in Redis hashes.
//   - [SQLite]: a parameters table in a SQLite database (modernc.org/sqlite).
//   - [HTTP]: a JSON parameter service at GET {base}/parameters/{name}.
//   - [Etcd]: the value of an etcd key.
//   - [SSM]: AWS Systems Manager Parameter Store.
//   - [NewChain]: several sources consulted in order.
//
// [WithRetry], [WithTimeout], [WithCircuitBreaker] and [WithTracing] wrap any Fetcher.
//
// Every source marks a missing parameter with cache.ErrParameterNotFound and a
// connectivity or authorization failure with cache.ErrTransport.
//
// Decorators compose in the order they are applied; the outermost runs first:
//
//	f := source.WithTracing(
//	    source.WithRetry(source.WithTimeout(redisSource, 2*time.Second), source.DefaultRetryConfig()),
//	    nil, "redis",
//	)
//
// The cache itself never retries, so WithRetry is where retry policy belongs.
package source
