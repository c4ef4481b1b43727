package models

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrDuplicatePost = errors.New("post with this title or description already exists")
	ErrPostNotFound  = errors.New("post not found")
	ErrInvalidID     = errors.New("invalid post ID format")
	ErrForbidden     = errors.New("not the author of this post")
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user with this email already registered")
)
