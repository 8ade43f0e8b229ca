package reactive

import (
	"errors"

	verrors "github.com/vango-dev/vcore/internal/errors"
)

// ErrReadonly is returned when a write or delete is attempted through a
// readonly handle or a getter-only Computed.
var ErrReadonly = errors.New("reactive: target is readonly")

// ErrUnsupported is returned when a collection does not implement the
// requested operation (for example Set on a unique-value collection).
var ErrUnsupported = errors.New("reactive: operation not supported")

// reject logs a coded diagnostic and returns it as an error.
func (rt *Runtime) reject(code string, sentinel error, format string, args ...any) error {
	err := verrors.New(code).WithDetailf(format, args...).Wrap(sentinel)
	rt.logger.Warn(err.Message, err.Attrs()...)
	return err
}
