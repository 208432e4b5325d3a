package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/justestif/go-vibe-discovery/internal/catalog"
	"github.com/justestif/go-vibe-discovery/internal/logging"
	"github.com/justestif/go-vibe-discovery/internal/pool"
	"github.com/justestif/go-vibe-discovery/internal/session"
	"github.com/justestif/go-vibe-discovery/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Error codes returned in the envelope.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidCategory = "INVALID_CATEGORY"
	CodeInvalidFilter   = "INVALID_FILTER"
	CodeInvalidRatio    = "INVALID_RATIO"
	CodeInvalidStrategy = "INVALID_STRATEGY"
	CodeNoGenrePool     = "NO_GENRE_POOL"
	CodeEmptyPool       = "EMPTY_POOL"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_ERROR"
)

// Response is the JSON envelope of every API response.
type Response struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError is the error part of the envelope.
type APIError struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondOK(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, &Response{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusCreated, &Response{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, &Response{
		Error: &APIError{Code: code, Message: message},
	})
}

// respondErr maps err onto a status and code. Unexpected errors are logged
// and their text is not returned.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logging.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		respondError(w, status, code, "internal server error")
		return
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		respondJSON(w, status, &Response{
			Error: &APIError{Code: code, Message: verr.Error(), Fields: verr.Fields},
		})
		return
	}
	respondError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, pool.ErrNoGenrePool):
		return http.StatusConflict, CodeNoGenrePool
	case errors.Is(err, pool.ErrInvalidCategory):
		return http.StatusBadRequest, CodeInvalidCategory
	case errors.Is(err, pool.ErrInvalidFilter):
		return http.StatusBadRequest, CodeInvalidFilter
	case errors.Is(err, pool.ErrInvalidRatio):
		return http.StatusBadRequest, CodeInvalidRatio
	case errors.Is(err, pool.ErrInvalidStrategy):
		return http.StatusBadRequest, CodeInvalidStrategy
	case errors.Is(err, pool.ErrEmptyPool):
		return http.StatusNotFound, CodeEmptyPool
	case errors.Is(err, session.ErrNotFound), errors.Is(err, catalog.ErrItemNotFound):
		return http.StatusNotFound, CodeNotFound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

var errBadRequest = errors.New("bad request")

// decodeRequest reads a JSON body into v and validates it. An empty body
// decodes as the zero value.
func decodeRequest(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return validation.Struct(v)
}
