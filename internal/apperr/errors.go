package apperr

import "errors"

// Sentinel errors shared by every service. Handlers translate these to HTTP
// statuses; everything else is treated as internal.
var (
	ErrBadRequest           = errors.New("bad request")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrAlreadyRegistered    = errors.New("already registered")
	ErrUnavailable          = errors.New("store unavailable")
	ErrSuggestionService    = errors.New("suggestion service error")
)
