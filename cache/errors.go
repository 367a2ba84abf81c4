package cache

import "github.com/cockroachdb/errors"

var (
	// ErrParameterNotFound marks errors meaning the parameter does not exist at the source.
	ErrParameterNotFound = errors.New("parameter not found")
	// ErrTransport marks errors meaning the source could not be reached or refused the caller.
	ErrTransport = errors.New("parameter source unavailable")
)

// NotFound returns an error for name marked with ErrParameterNotFound.
func NotFound(name string) error {
	return errors.Mark(errors.Newf("parameter %q not found", name), ErrParameterNotFound)
}

// IsNotFound reports whether err is marked with ErrParameterNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrParameterNotFound)
}

// IsTransport reports whether err is marked with ErrTransport.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
