package users

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var usernameRules = []validation.Rule{validation.Required, validation.Length(3, 30), is.UTFLetterNumeric}

// passwords are capped at 72 bytes, the most bcrypt will digest
var passwordRules = []validation.Rule{validation.Required, validation.Length(8, 72)}

type User struct {
	Id       int64
	Username string
	Password string `json:"-"` // the bcrypt hash never leaves the server
}

type RegisterData struct {
	Username string
	Password string
}

func (data RegisterData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, usernameRules...),
		validation.Field(&data.Password, passwordRules...),
	)
}

type LoginData struct {
	Username string
	Password string
}

// Validate deliberately skips format rules; credentials are judged against
// stored records, not registration constraints that may have changed since.
func (data LoginData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Username, validation.Required),
		validation.Field(&data.Password, validation.Required),
	)
}
