package users

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

type UserRepository interface {
	Register(data RegisterData) (*User, error)
	GetUserByName(username string) (User, error)
	GetUserById(id int64) (User, error)
	ExistsUserId(id int64) bool
}

type userRepository struct {
	Connection *sql.DB
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username is already taken")
)

func NewRepository(connection *sql.DB) UserRepository {
	return &userRepository{connection}
}

// Register hashes the candidate's password and creates the account, relying on
// the username's unique constraint to arbitrate races; there's no prior
// existence check, which would merely narrow the race window.
func (ur *userRepository) Register(data RegisterData) (*User, error) {

	hash, err := HashPassword(data.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password for %q: %w", data.Username, err)
	}

	result, err := ur.Connection.Exec(
		"INSERT INTO users(username, password) VALUES(?, ?)",
		data.Username, hash,
	)

	// a unique constraint violation signals the username is taken
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't add user %q: %w", data.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &User{Id: id, Username: data.Username, Password: hash}, nil
}

// GetUserByName either returns the user matching the name, case sensitively,
// or ErrNotFound; absence isn't an anomalous condition.
func (ur *userRepository) GetUserByName(username string) (user User, err error) {
	if err = ur.Connection.QueryRow(
		"SELECT id, username, password FROM users WHERE username = ?",
		username,
	).Scan(&user.Id, &user.Username, &user.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}
	return user, nil
}

func (ur *userRepository) GetUserById(id int64) (user User, err error) {
	if err = ur.Connection.QueryRow(
		"SELECT id, username, password FROM users WHERE id = ?",
		id,
	).Scan(&user.Id, &user.Username, &user.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}
	return user, nil
}

func (ur *userRepository) ExistsUserId(id int64) (exists bool) {
	// will return false in the absence of positive results
	err := ur.Connection.QueryRow("SELECT TRUE FROM users WHERE id = ?", id).Scan(&exists)
	return err == nil && exists
}
