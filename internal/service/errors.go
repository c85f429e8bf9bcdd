package service

import "errors"

var (
	// ErrInvalidInput means a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCategory means the category does not exist or belongs to
	// someone else. Callers cannot tell the two apart.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrNotFound means the resource does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrLastCategory is returned when deleting a user's only category.
	ErrLastCategory = errors.New("cannot delete the last category")
	// ErrCategoryExists is returned when the user already has a category with that name.
	ErrCategoryExists = errors.New("category already exists")
	// ErrEmailTaken is returned when registering or switching to a used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidResetToken means a password reset token is unknown,
	// expired or already used.
	ErrInvalidResetToken = errors.New("invalid or expired token")

	errCategoryMissing  = errors.New("category does not exist")
	errCategoryNotOwned = errors.New("category owned by another user")
)
