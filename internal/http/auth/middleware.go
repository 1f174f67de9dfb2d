package auth

import (
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

type TokenParser interface {
	Parse(token string) (user.Actor, error)
}

// Middleware resolves the bearer token into an Actor stored on the request
// context. Requests without a valid token are rejected with 401.
func Middleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r)
			if !ok {
				respond.Error(w, r, user.ErrInvalidToken)
				return
			}

			actor, err := tokens.Parse(token)
			if err != nil {
				respond.Error(w, r, user.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(user.WithActor(r.Context(), actor)))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}

// Actor returns the caller set by Middleware. Handlers only run behind it, so
// a missing actor yields the zero value, which can access nothing.
func Actor(r *http.Request) user.Actor {
	a, _ := user.ActorFrom(r.Context())
	return a
}
