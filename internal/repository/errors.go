package repository

import "errors"

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateName   = errors.New("an active company with this name already exists")
	ErrInvalidInput    = errors.New("invalid input parameters")
)
