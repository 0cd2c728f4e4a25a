package apperrors

import "errors"

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrMissingCredential     = errors.New("account or email is required")
	ErrPasswordMismatch      = errors.New("passwords do not match")
	ErrEmailTaken            = errors.New("email already registered")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrCodeNotFound          = errors.New("verification code not found")
	ErrCodeAlreadyUsed       = errors.New("verification code already used")
	ErrCodeExpired           = errors.New("verification code expired")
	ErrAllocationExhausted   = errors.New("failed to allocate a unique account")
	ErrProviderAlreadyLinked = errors.New("github account already linked")
	ErrAlreadyVerified       = errors.New("email already verified or invalid")
)

// ProviderError carries the error description reported by the OAuth
// provider's token endpoint.
type ProviderError struct {
	Description string
}

func (e *ProviderError) Error() string {
	return "github provider error: " + e.Description
}

var business = []error{
	ErrInvalidArgument,
	ErrMissingCredential,
	ErrPasswordMismatch,
	ErrEmailTaken,
	ErrUserNotFound,
	ErrInvalidPassword,
	ErrCodeNotFound,
	ErrCodeAlreadyUsed,
	ErrCodeExpired,
	ErrAllocationExhausted,
	ErrProviderAlreadyLinked,
	ErrAlreadyVerified,
}

// IsBusiness reports whether err is a recognized business failure, as
// opposed to an infrastructure error (store/provider unreachable).
func IsBusiness(err error) bool {
	for _, target := range business {
		if errors.Is(err, target) {
			return true
		}
	}
	var provErr *ProviderError
	return errors.As(err, &provErr)
}
