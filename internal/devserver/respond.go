package devserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/model"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError replies with the backend's error envelope.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   msg,
		Path:      r.URL.Path,
	})
}

// fail maps a service error onto a status code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var inv *errs.InvalidError
	switch {
	case errors.As(err, &inv):
		writeError(w, r, http.StatusBadRequest, inv.Msg)
	case errors.Is(err, errs.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "invalid input")
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, errs.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "you do not have permission to access this resource")
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "already exists")
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, r, http.StatusTooManyRequests, "too many failed attempts, try again later")
	default:
		s.log.Error("handler", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Invalid("malformed request body")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, errs.Invalid("bad %s", name)
	}
	return v, nil
}

func queryInt(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v >= 0 {
		return v
	}
	return def
}

func pageQuery(r *http.Request) model.PageQuery {
	q := model.PageQuery{
		Page:    queryInt(r, "page", 0),
		Size:    queryInt(r, "size", defaultPageSize),
		Keyword: r.URL.Query().Get("keyword"),
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("categoryId"), 10, 64); err == nil {
		q.CategoryID = v
	}
	return q
}
