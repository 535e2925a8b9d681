package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exists")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")

	ErrWorkoutNotFound       = errors.New("workout doesn't exist")
	ErrWrongOwner            = errors.New("resource has different owner")
	ErrOwnerNotFound         = errors.New("owner doesn't exist")
	ErrWorkoutDateNotAllowed = errors.New("workout date in future not allowed")
	ErrActivityNotFound      = errors.New("activity for given day doesn't exist")
)
