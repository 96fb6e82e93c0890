// Package auth extracts the current actor from trusted proxy headers and
// gates administrative routes behind an email allow-list.
package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Actor is the current requester. A zero Actor is anonymous.
type Actor struct {
	ID    string
	Email string
}

func (a Actor) Anonymous() bool {
	return a.ID == ""
}

// FromRequest reads the identity the auth proxy injected upstream.
func FromRequest(r *http.Request) Actor {
	return Actor{
		ID:    r.Header.Get("X-User-Id"),
		Email: r.Header.Get("X-User-Email"),
	}
}

// Allowlist is the set of admin emails, case-insensitive.
type Allowlist map[string]struct{}

func NewAllowlist(emails []string) Allowlist {
	list := make(Allowlist, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			list[email] = struct{}{}
		}
	}
	return list
}

func (l Allowlist) IsAdmin(a Actor) bool {
	if a.Anonymous() {
		return false
	}
	_, ok := l[strings.ToLower(a.Email)]
	return ok
}

// RequireAdmin rejects requests whose actor is not on the allow-list.
func RequireAdmin(list Allowlist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := FromRequest(r)
			if !list.IsAdmin(actor) {
				log.Warn().Str("user_id", actor.ID).Str("path", r.URL.Path).Msg("auth: admin access denied")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
