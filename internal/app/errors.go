package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrSessionNotFound   = errors.New("session not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrMessageEmpty      = errors.New("message content is empty")
	ErrMessageEnqueue    = errors.New("message enqueue failed")
)
