package sources

import (
	"errors"
	"fmt"

	"github.com/runeset/elotrace/internal/domain/model"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrTransport marks unreachable hosts, timeouts, non-2xx statuses and
	// open circuit breakers.
	ErrTransport = errors.New("transport failure")
	// ErrNoData marks a national-team name that matched in zero years of
	// the requested range.
	ErrNoData = errors.New("no data found for this name")
	// ErrUnknownSource marks a fetch for a source kind the registry does
	// not serve.
	ErrUnknownSource = errors.New("unknown source kind")
)

// TransportError wraps a network-level failure for one entity fetch.
type TransportError struct {
	Entity string
	Source model.SourceKind
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s fetch for %q: %v", e.Source, e.Entity, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTransport) match any transport failure.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// NoDataError reports a lookup failure: the requested name produced no
// rating in any year of the crawled range.
type NoDataError struct {
	Entity string
	Years  model.YearRange
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no rating found for %q in %d..%d", e.Entity, e.Years.From, e.Years.To)
}

// Is lets errors.Is(err, ErrNoData) match any lookup failure.
func (e *NoDataError) Is(target error) bool { return target == ErrNoData }

// statusError reports a non-2xx upstream response.
type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.status, e.url)
}
