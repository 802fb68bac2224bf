package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName identifies the HTTP-only cookie carrying the session token.
const CookieName = "sapore_session"

var ErrInvalidToken = errors.New("invalid session token")

// Sessions issues and verifies the signed tokens binding a user id to a
// request; the surrounding cookie plumbing lives here too, so handlers only
// deal with user identifiers.
type Sessions struct {
	secret   []byte
	duration time.Duration
}

func NewSessions(secret string, duration time.Duration) Sessions {
	return Sessions{[]byte(secret), duration}
}

// Issue creates a signed token bearing the user's id as its subject.
func (s Sessions) Issue(userId int64) (string, error) {
	var now = time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userId, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
	}).SignedString(s.secret)
}

// Verify parses a token and returns the user id it was issued to.
func (s Sessions) Verify(token string) (int64, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return 0, ErrInvalidToken
	}

	userId, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userId < 1 {
		return 0, ErrInvalidToken
	}
	return userId, nil
}

// SetCookie binds a freshly issued token to the response.
func (s Sessions) SetCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.duration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie discards the session identity on logout.
func (s Sessions) ClearCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
