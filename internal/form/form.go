package form

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync/atomic"
)

// ErrPending is returned when a form is submitted while a previous
// submission is still in flight.
var ErrPending = errors.New("submission already in progress")

// ValidationError lists the problems found before a request was issued.
// Message is the first problem, which is what gets shown to the user.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return e.Message()
}

// Message returns the first problem.
func (e *ValidationError) Message() string {
	if len(e.Problems) == 0 {
		return "invalid input"
	}
	return e.Problems[0]
}

// Errors accumulates validation problems in the order they are found.
type Errors struct {
	problems []string
}

// Add records msg unless it is empty.
func (e *Errors) Add(msg string) {
	if msg != "" {
		e.problems = append(e.problems, msg)
	}
}

// Check records msg when cond is false.
func (e *Errors) Check(cond bool, msg string) {
	if !cond {
		e.Add(msg)
	}
}

// Err returns a *ValidationError when any problem was recorded, nil otherwise.
func (e *Errors) Err() error {
	if len(e.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: append([]string(nil), e.problems...)}
}

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidEmail reports whether s, after trimming, is a bare address such as a@x.com.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// Submitter guards a form against duplicate concurrent submissions. The
// zero value is ready to use.
type Submitter struct {
	pending atomic.Bool
}

// Pending reports whether a submission is in flight.
func (s *Submitter) Pending() bool {
	return s.pending.Load()
}

// Submit runs fn unless another submission is in flight, in which case it
// returns ErrPending without calling fn. The pending flag is cleared when fn
// returns, whatever the outcome.
func (s *Submitter) Submit(ctx context.Context, fn func(context.Context) error) error {
	if !s.pending.CompareAndSwap(false, true) {
		return ErrPending
	}
	defer s.pending.Store(false)

	return fn(ctx)
}
