package auth

import (
	"context"
	"errors"
	"net/http"

	JSON "github.com/nmerlini/sapore/pkg/json-utilities"
)

/* There are two solutions to avoiding cyclic imports between `auth` and `users` packages:
1. merge the two in the users package
2. adopt and maintain an interface as a dependency in the auth package
*/

type contextKey string

const userIdKey contextKey = "userId"

type userChecker interface {
	ExistsUserId(id int64) bool
}

// Auth guards routes that demand a session identity: requests must carry a
// valid, unexpired session cookie referring to an existing user.
func Auth(ur userChecker, sessions Sessions) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {

			cookie, err := request.Cookie(CookieName)
			if err != nil {
				reportUnauthenticated(w)
				return
			}

			userId, err := sessions.Verify(cookie.Value)
			if err != nil {
				reportUnauthenticated(w)
				return
			}

			// verify the user exists; tokens may outlive their accounts
			if ur.ExistsUserId(userId) {
				// create a new context, stemming from the original one, adding the user's id for future reference
				next.ServeHTTP(w, request.WithContext(context.WithValue(request.Context(), userIdKey, userId)))
			} else {
				reportUnauthenticated(w)
			}
		})
	}
}

// GetUserId returns the session-bound user id attached by the Auth middleware.
func GetUserId(request *http.Request) (int64, error) {
	var id = request.Context().Value(userIdKey)
	// return an error to detect a possibly missing auth middleware
	if id == nil {
		return 0, errors.New("no user id bound to the request context")
	}
	return id.(int64), nil
}

// MustGetUserId serves handlers registered behind the Auth middleware, where a
// missing identity denotes a programming error rather than a client one.
func MustGetUserId(request *http.Request) int64 {
	id, err := GetUserId(request)
	if err != nil {
		panic(err)
	}
	return id
}

func reportUnauthenticated(w http.ResponseWriter) {
	JSON.Unauthorised(w, "Authentication required")
}
