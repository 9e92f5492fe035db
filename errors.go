package plume

import "errors"
import "fmt"

var (
	ErrTableNotBound = errors.New("table not connected to a cluster")
	ErrNoCluster     = errors.New("schema not connected to a cluster")
)

type WrappedError struct {
	err     error
	wrapped error
}

func WrapError(msg string, err error) error { return WrappedError{errors.New(msg), err} }
func (wrap WrappedError) Error() string     { return fmt.Sprintf("%s: %s", wrap.err, wrap.wrapped) }
func (wrap WrappedError) Unwrap() error     { return wrap.wrapped }
