package users

import (
	"errors"
	"net/http"

	"github.com/nmerlini/sapore/pkg/auth"
	JSON "github.com/nmerlini/sapore/pkg/json-utilities"
	"github.com/nmerlini/sapore/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, ur UserRepository, sessions auth.Sessions) {
	engine.Post("/register", registerUser(ur))
	engine.Post("/login", loginUser(ur, sessions))
	engine.Get("/logout", logoutUser(sessions))
}

// registerUser handles the POST "/register" route
func registerUser(ur UserRepository) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[RegisterData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		newUser, err := ur.Register(data)
		switch {
		case err == nil:
			JSON.Created(writer, struct {
				Id       int64
				Username string
			}{newUser.Id, newUser.Username})
		case errors.Is(err, ErrUsernameTaken):
			JSON.BadRequestWithMessage(writer, "Username already exists")
		default:
			rest.Logger(request).WithError(err).Error("user registration failed")
			JSON.InternalServerError(writer)
		}
	}
}

// loginUser handles the POST "/login" route; a matching username and password
// pair binds a session identity to the response cookie.
func loginUser(ur UserRepository, sessions auth.Sessions) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[LoginData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		// deny absent users and mismatched passwords identically, so probes
		// can't tell registered usernames apart
		user, err := ur.GetUserByName(data.Username)
		if errors.Is(err, ErrNotFound) || (err == nil && !VerifyPassword(user.Password, data.Password)) {
			JSON.Unauthorised(writer, "Invalid username or password")
			return
		}
		if err != nil {
			rest.Logger(request).WithError(err).Error("login failed")
			JSON.InternalServerError(writer)
			return
		}

		token, err := sessions.Issue(user.Id)
		if err != nil {
			rest.Logger(request).WithError(err).Error("session token issuance failed")
			JSON.InternalServerError(writer)
			return
		}

		sessions.SetCookie(writer, token)
		JSON.Ok(writer, struct {
			Id       int64
			Username string
		}{user.Id, user.Username})
	}
}

// logoutUser handles the GET "/logout" route
func logoutUser(sessions auth.Sessions) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		sessions.ClearCookie(writer)
		JSON.NoContent(writer)
	}
}
