package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/runeset/elotrace/internal/domain/model"
)

// Sentinel errors for this package. These allow errors.Is/As from callers.
var (
	// ErrEmptyResult is the terminal all-entities-empty condition: no
	// requested entity produced any rows, so there is nothing to
	// transform or export.
	ErrEmptyResult = errors.New("no data for any requested entity")
	// ErrNotStarted marks a call on a service that was never started.
	ErrNotStarted = errors.New("service not started")
	// ErrInvalidQuery marks a query the service refuses to run.
	ErrInvalidQuery = errors.New("invalid query")
)

// EmptyResultError carries the collected per-entity failures behind
// the terminal empty-result condition, so callers can tell the user
// why each entity came back empty.
type EmptyResultError struct {
	Errors []model.EntityError
}

func (e *EmptyResultError) Error() string {
	if len(e.Errors) == 0 {
		return ErrEmptyResult.Error()
	}
	parts := make([]string, 0, len(e.Errors))
	for _, ee := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", ee.Entity, ee.Message))
	}
	return fmt.Sprintf("%s (%s)", ErrEmptyResult.Error(), strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrEmptyResult) match.
func (e *EmptyResultError) Is(target error) bool { return target == ErrEmptyResult }
