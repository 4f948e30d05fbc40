package http

import (
	"errors"
	"net/http"

	"github.com/couchcryptid/epw-viewer/internal/derive"
	"github.com/couchcryptid/epw-viewer/internal/epw"
	"github.com/couchcryptid/epw-viewer/internal/store"
)

var errFileNotFound = errors.New("file not found")

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// statusFor maps an error to its HTTP status and a stable kind string.
func statusFor(err error) (int, string) {
	var (
		tooLarge  *http.MaxBytesError
		unknown   *derive.UnknownFieldError
		missing   *derive.MissingInputError
		headerErr *epw.HeaderParseError
		recordErr *epw.RecordParseError
		fieldErr  *epw.FieldTypeError
		sequence  *epw.SequenceError
	)
	switch {
	case errors.Is(err, errFileNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.As(err, &headerErr), errors.As(err, &recordErr),
		errors.As(err, &fieldErr), errors.As(err, &sequence),
		errors.Is(err, epw.ErrNoRecords):
		return http.StatusUnprocessableEntity, store.ErrorKind(err)
	case errors.As(err, &unknown):
		return http.StatusBadRequest, "unknown_field"
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, "missing_input"
	case errors.Is(err, derive.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, derive.ErrNoData):
		return http.StatusUnprocessableEntity, "no_data"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "kind", kind, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Kind: kind})
}
