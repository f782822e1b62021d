package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ItemCatalog/pkg/kit"
)

const (
	tokenLimitPerMin = 5
	limitWindow      = 60 * time.Second
)

// Routes serves POST /token behind a per-IP limiter and Basic-only
// authentication. Mount it under /auth.
func (s *Server) Routes(gate *Gate) http.Handler {
	r := chi.NewRouter()

	limiter := kit.NewIPRateLimiter(tokenLimitPerMin, limitWindow)
	r.With(limiter.Middleware, gate.BasicOnly).Post("/token", s.handleToken)

	return r
}
