package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const UserIDKey contextKey = "userID"

// AnonymousUserID is placed in the context for tokenless requests to an
// open server.
const AnonymousUserID = "anonymous"

var errNoToken = errors.New("missing authorization header")

// TokenFromRequest reads a bearer token from the Authorization header, or
// from the token query parameter when allowQuery is set. Browsers cannot
// set headers on a websocket upgrade.
func TokenFromRequest(r *http.Request, allowQuery bool) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if allowQuery {
			if tok := r.URL.Query().Get("token"); tok != "" {
				return tok, nil
			}
		}
		return "", errNoToken
	}
	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || tok == "" {
		return "", errors.New("invalid authorization format")
	}
	return tok, nil
}

// AuthMiddleware requires a valid bearer token. An open server admits
// requests that carry no token at all; a malformed or invalid one is still
// rejected.
func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := TokenFromRequest(r, false)
		if errors.Is(err, errNoToken) && s.Open() {
			ctx := context.WithValue(r.Context(), UserIDKey, AnonymousUserID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}

		userID, err := s.ValidateToken(tok)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
