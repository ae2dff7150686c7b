package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/libero/internal/adapters/mq/queue"
	"github.com/okian/libero/internal/adapters/repository"
	"github.com/okian/libero/internal/adapters/source"
	"github.com/okian/libero/internal/domain/model"
	"github.com/okian/libero/internal/domain/simulator"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrBackpressure  = errors.New("backpressure")
	ErrNotFound      = errors.New("not found")
	ErrUnprocessable = errors.New("match rejected")
	ErrUnavailable   = errors.New("unavailable")
)

// Error annotates a failure with the handler operation and its kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap attaches op to err. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps an error chain onto a status code and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrDecodeMatch),
		errors.Is(err, model.ErrEmptyInput),
		errors.Is(err, source.ErrInvalidURL),
		errors.Is(err, source.ErrEmptyMatchID),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, repository.ErrInvalidSession):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrUnprocessable),
		errors.Is(err, simulator.ErrMissingEvents),
		errors.Is(err, simulator.ErrMissingLineups),
		errors.Is(err, simulator.ErrInvalidLineup):
		return http.StatusUnprocessableEntity, "match_rejected"
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, queue.ErrClosed),
		errors.Is(err, source.ErrNotConfigured):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, source.ErrUpstream), errors.Is(err, source.ErrUpstreamStatus):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
