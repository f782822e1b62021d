package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ItemCatalog/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20
	readyTimeout = 1 * time.Second

	errBadRequest = "Bad request"
	errNotFound   = "Not found"
	errInternal   = "Internal server error"
)

type Server struct {
	Items *Service
	Log   *zap.Logger
}

// Routes registers the item endpoints on r. Authentication is applied by
// the caller.
func (s *Server) Routes(r chi.Router) {
	r.Get("/items", s.list)
	r.Post("/items", s.create)
	r.Get("/items/{id:[0-9]+}", s.get)
	r.Put("/items/{id:[0-9]+}", s.update)
	r.Delete("/items/{id:[0-9]+}", s.delete)
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Items.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, http.StatusServiceUnavailable, "Service unavailable", "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	items, err := s.Items.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, items)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	it, err := s.Items.Create(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, it)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	it, err := s.Items.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	it, err := s.Items.Update(r.Context(), id, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	res, err := s.Items.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation:
			kit.WriteError(w, http.StatusBadRequest, errBadRequest, e.Message)
			return
		case KindNotFound:
			kit.WriteError(w, http.StatusNotFound, errNotFound, e.Message)
			return
		}
	}

	s.logger().Error("item operation failed",
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	kit.WriteError(w, http.StatusInternalServerError, errInternal, "The server encountered an internal error.")
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// itemID parses the {id} path segment. Values that do not fit an int64 are
// reported as a missing route.
func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		notFound(w, r)
		return 0, false
	}
	return id, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			kit.WriteError(w, http.StatusRequestEntityTooLarge, "Request entity too large", "Request body exceeds 1 MiB")
			return nil, false
		}
		kit.WriteError(w, http.StatusBadRequest, errBadRequest, ErrNotJSON.Message)
		return nil, false
	}
	return body, true
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	kit.WriteError(w, http.StatusNotFound, errNotFound, "The requested URL was not found on the server.")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	kit.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
}
