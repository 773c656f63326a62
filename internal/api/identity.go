package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// Identity is the caller as asserted by the identity provider in front of
// the API. The headers are trusted as given.
type Identity struct {
	UserID   uint64
	Username string
	Admin    bool
}

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
	HeaderAdmin    = "X-Admin"
)

type identityKey struct{}

func identityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// withIdentity reads the identity headers. A malformed user id is rejected
// here so handlers only see valid ids.
func withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id Identity

		if raw := strings.TrimSpace(r.Header.Get(HeaderUserID)); raw != "" {
			userID, err := parseUserID(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+HeaderUserID+" header")
				return
			}

			id.UserID = userID
		}

		id.Username = strings.TrimSpace(r.Header.Get(HeaderUserName))
		id.Admin, _ = strconv.ParseBool(strings.TrimSpace(r.Header.Get(HeaderAdmin)))

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !identityFrom(r.Context()).Admin {
			writeError(w, http.StatusForbidden, "admin only")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identityFrom(r.Context()).UserID == 0 {
			writeError(w, http.StatusUnauthorized, "missing "+HeaderUserID+" header")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireSelfOrAdmin limits /accounts/{userId} routes to the owner and admins.
func requireSelfOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identityFrom(r.Context())
		if id.Admin {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := parseUserIDFromPath(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid userId in path")
			return
		}
		if id.UserID == 0 {
			writeError(w, http.StatusUnauthorized, "missing "+HeaderUserID+" header")
			return
		}
		if id.UserID != userID {
			writeError(w, http.StatusForbidden, "not your account")
			return
		}

		next.ServeHTTP(w, r)
	})
}
