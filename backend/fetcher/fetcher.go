// Package fetcher loads redeem pages in a real browser so the script-driven
// verdict text is present before classification.
package fetcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

// Fetcher opens browser sessions. Each worker owns exactly one session.
type Fetcher interface {
	Open(ctx context.Context) (Session, error)
}

// Session renders pages one at a time. It is not shared between goroutines.
type Session interface {
	Fetch(ctx context.Context, url string) (verdict.Page, error)
	Close() error
}

type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindTimeout
)

func (k ErrorKind) String() string {
	if k == KindTimeout {
		return "timeout"
	}
	return "transport"
}

// FetchError is returned by Session.Fetch. Callers treat either kind as a
// negative result for the tried token.
type FetchError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError classifies err as a timeout when it stems from a deadline.
func NewFetchError(url string, err error) *FetchError {
	kind := KindTransport
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &FetchError{Kind: kind, URL: url, Err: err}
}

// IsTimeout reports whether err is a FetchError of kind timeout.
func IsTimeout(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == KindTimeout
}
