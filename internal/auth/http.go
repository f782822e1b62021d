package auth

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"ItemCatalog/pkg/kit"
)

type Server struct {
	Log    *zap.Logger
	Tokens *TokenMaker
	TTL    time.Duration
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// handleToken exchanges the Basic credentials accepted by the gate for a
// bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", basicChallenge)
		kit.WriteError(w, http.StatusUnauthorized, unauthorizedMsg, "")
		return
	}

	tok, err := s.Tokens.New(username, s.TTL)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("token issue", zap.Error(err), zap.String("username", username))
		}
		kit.WriteError(w, http.StatusInternalServerError, "Internal server error", "could not issue token")
		return
	}

	kit.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.TTL.Seconds()),
	})
}
