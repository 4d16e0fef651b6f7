package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is not found for the user
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound is returned when a user row is missing
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateNumber is returned when (user_id, number) already exists
	ErrDuplicateNumber = errors.New("task number already exists for this user")

	// ErrUserExists is returned when the email or phone is already registered
	ErrUserExists = errors.New("user already exists")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
