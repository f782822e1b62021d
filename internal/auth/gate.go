package auth

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ItemCatalog/pkg/kit"
)

const (
	unauthorizedMsg = "Unauthorized access"
	basicChallenge  = `Basic realm="Authentication Required"`
)

type ctxKey string

const usernameKey ctxKey = "username"

func UsernameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(usernameKey).(string)
	return v, ok
}

// Gate authenticates requests against a CredentialSource, and against
// issued bearer tokens when Tokens is set.
type Gate struct {
	Creds  CredentialSource
	Tokens *TokenMaker
	Log    *zap.Logger

	failures *prometheus.CounterVec
}

// NewGate registers the auth failure counter on reg when reg is not nil.
func NewGate(creds CredentialSource, tokens *TokenMaker, log *zap.Logger, reg prometheus.Registerer) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gate{Creds: creds, Tokens: tokens, Log: log}

	if reg != nil {
		g.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_auth_failures_total",
			Help: "Rejected authentication attempts",
		}, []string{"scheme"})
		reg.MustRegister(g.failures)
	}
	return g
}

// Verify reloads the credential source and checks the pair.
func (g *Gate) Verify(ctx context.Context, username, password string) bool {
	stored, ok := g.Creds.Load(ctx)[username]
	if !ok {
		return false
	}
	return PasswordMatches(stored, password)
}

// Middleware accepts Basic credentials, or a bearer token when tokens are
// enabled.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return g.guard(next, true)
}

// BasicOnly accepts Basic credentials only.
func (g *Gate) BasicOnly(next http.Handler) http.Handler {
	return g.guard(next, false)
}

func (g *Gate) guard(next http.Handler, allowBearer bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, scheme, ok := g.authenticate(r, allowBearer)
		if !ok {
			g.reject(w, r, scheme, username)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) authenticate(r *http.Request, allowBearer bool) (username, scheme string, ok bool) {
	if allowBearer && g.Tokens != nil {
		if tok, found := kit.BearerToken(r); found {
			claims, err := g.Tokens.Parse(tok)
			if err != nil {
				return "", "bearer", false
			}
			return claims.Username, "bearer", true
		}
	}

	username, password, found := r.BasicAuth()
	if !found {
		return "", "none", false
	}
	return username, "basic", g.Verify(r.Context(), username, password)
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, scheme, username string) {
	if g.failures != nil {
		g.failures.WithLabelValues(scheme).Inc()
	}
	g.Log.Debug("authentication failed",
		zap.String("scheme", scheme),
		zap.String("username", username),
		zap.String("path", r.URL.Path),
	)

	w.Header().Set("WWW-Authenticate", basicChallenge)
	kit.WriteError(w, http.StatusUnauthorized, unauthorizedMsg, "")
}
