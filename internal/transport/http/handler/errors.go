package handler

const (
	errInternalServer    = "Internal server error"
	errAccountExists     = "Account already exists"
	errInvalidEmail      = "Invalid email"
	errEmailNotConfirmed = "Email not confirmed"
	errInvalidPassword   = "Invalid password"
	errTokenInvalid      = "Invalid token for email verification"
	errRefreshInvalid    = "Could not validate credentials"
	errContactNotFound   = "Contact not found"
)
