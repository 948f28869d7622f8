package app

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCredentialsInvalid = errors.New("could not validate credentials")
	ErrIncorrectLogin     = errors.New("incorrect email or password")
)
