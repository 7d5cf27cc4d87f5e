package domain

// UserInputError marks a failure caused by the user's request rather than a
// backing system. Handlers surface these verbatim instead of a generic
// failure message.
type UserInputError struct {
	Message string
}

func (e *UserInputError) Error() string {
	return e.Message
}

// NewUserInputError creates a UserInputError with the given message.
func NewUserInputError(message string) *UserInputError {
	return &UserInputError{Message: message}
}

// IsUserInputError reports whether err is a UserInputError.
func IsUserInputError(err error) bool {
	_, ok := err.(*UserInputError)
	return ok
}
