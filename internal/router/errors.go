package router

// UserError represents an error that should be displayed to the user.
// These are not system failures - just invalid input or usage.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) userMessage() string {
	return e.Message
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

// ValidationError rejects a request whose fields are malformed or out of range.
type ValidationError struct {
	UserError
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{UserError{Message: msg}}
}

// AuthorizationError rejects a request the character is not allowed to make.
type AuthorizationError struct {
	UserError
}

func NewAuthorizationError(msg string) *AuthorizationError {
	return &AuthorizationError{UserError{Message: msg}}
}

// AuthError fails a login. The connection is closed once the message is sent.
type AuthError struct {
	UserError
}

func NewAuthError(msg string) *AuthError {
	return &AuthError{UserError{Message: msg}}
}

// userFacing is satisfied by every error whose message may reach the client.
type userFacing interface {
	error
	userMessage() string
}

const (
	msgGenericFailure  = "Failed to process message"
	msgCharacterExists = "Character already exists"
	msgWrongPassword   = "Incorrect password"
	msgNotFound        = "Character not found"
	msgAlreadyOnline   = "Character already logged in"
	msgCorruptRecord   = "Character record is damaged"
	msgNoPrivilege     = "You are not allowed to edit the world"
)
