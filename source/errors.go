package source

import (
	"github.com/agentuity/go-paramcache/cache"
	"github.com/cockroachdb/errors"
)

func transportError(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), cache.ErrTransport)
}

func notFoundError(err error, name string) error {
	return errors.Mark(errors.Wrapf(err, "parameter %q", name), cache.ErrParameterNotFound)
}
