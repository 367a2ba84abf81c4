package source

import "time"

// Parameter is the stored form of a parameter in the Redis and SQLite sources and
// the response body of the HTTP source.
type Parameter struct {
	Name      string    `msgpack:"name" json:"name"`
	Value     string    `msgpack:"value" json:"value"`
	Version   int64     `msgpack:"version,omitempty" json:"version"`
	UpdatedAt time.Time `msgpack:"updated_at" json:"updated_at,omitempty"`
}
