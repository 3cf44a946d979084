package content

import (
	"errors"
	"fmt"
	"net/http"
)

// FetchError reports that the Markdown or metadata of an item could not be
// fetched. Either half failing fails the whole item.
type FetchError struct {
	Name       string
	URL        string
	StatusCode int // 0 when the request itself failed
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: %s returned %d", e.Name, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.Name, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFound reports whether the host answered 404.
func (e *FetchError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IndexError reports that the content index could not be loaded.
type IndexError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *IndexError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching content index: %s returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching content index: %v", e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// statusError is the internal error for a non-2xx response.
type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.url, e.code)
}

// IsNotFound reports whether err is a FetchError for a missing item.
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.NotFound()
}

func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.code
	}
	return 0
}
