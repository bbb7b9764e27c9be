package errors

import "fmt"

var (
	ErrInvalidCredentials  = fmt.Errorf("invalid username or password")
	ErrAccountBanned       = fmt.Errorf("account is banned")
	ErrUsernameTaken       = fmt.Errorf("username is already taken")
	ErrInvalidRegistration = fmt.Errorf("invalid registration request")
	ErrInvalidProfile      = fmt.Errorf("invalid profile update")
	ErrEmptyContent        = fmt.Errorf("empty message content")
	ErrNotAuthorized       = fmt.Errorf("operation not authorized")
	ErrNotFound            = fmt.Errorf("record not found")
	ErrTokenGeneration     = fmt.Errorf("token generation failed")
	ErrInvalidToken        = fmt.Errorf("invalid resume token")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
)
