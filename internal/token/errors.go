package token

import "fmt"

// KeyNotFoundError indicates the private key file does not exist.
type KeyNotFoundError struct {
	Path string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("private key not found at %s", e.Path)
}

// KeyReadError indicates the key file exists but could not be read.
type KeyReadError struct {
	Path string
	Err  error
}

func (e *KeyReadError) Error() string {
	return fmt.Sprintf("reading private key %s: %v", e.Path, e.Err)
}

func (e *KeyReadError) Unwrap() error { return e.Err }

// KeyInvalidError indicates the key file was read but does not hold a
// usable EC private key.
type KeyInvalidError struct {
	Path string
	Err  error
}

func (e *KeyInvalidError) Error() string {
	return fmt.Sprintf("invalid private key %s: %v", e.Path, e.Err)
}

func (e *KeyInvalidError) Unwrap() error { return e.Err }

// SigningError indicates the key material was unusable or signing failed.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing token: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// VerifyError indicates a token failed verification.
type VerifyError struct {
	Err error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("invalid token: %v", e.Err)
}

func (e *VerifyError) Unwrap() error { return e.Err }
