package server

import (
	"io/fs"
	"net/http"

	"github.com/pkg/errors"

	"github.com/oduortoni/sonika/internal/catalog"
)

// statusForError maps a filesystem error to an HTTP status code. A failed
// tune listing is always a server error, even when its cause is a permission
// failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, catalog.ErrListing):
		return http.StatusInternalServerError
	case errors.Is(err, catalog.ErrInvalidName), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail writes a generic error response for err. Only unexpected failures are
// logged as errors; missing or forbidden resources are debug output.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(errors.Wrapf(err, "%s %s (request %s)", r.Method, r.URL.Path, requestID(r.Context())))
	} else {
		s.logger.Debugf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	http.Error(w, http.StatusText(status), status)
}

// recoverPanic converts a handler panic into a 500 response.
func (s *Server) recoverPanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	s.logger.Error(errors.Errorf("panic serving %s %s (request %s): %v", r.Method, r.URL.Path, requestID(r.Context()), recovered))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
