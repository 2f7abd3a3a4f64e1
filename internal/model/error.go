package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeCartEmpty           = "CART_EMPTY"
	ErrCodeInvalidCartIndex    = "INVALID_CART_INDEX"
	ErrCodeItemUnavailable     = "ITEM_UNAVAILABLE"
	ErrCodeCheckoutInProgress  = "CHECKOUT_IN_PROGRESS"
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeWeakPassword        = "WEAK_PASSWORD"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeRemoteFailure       = "REMOTE_FAILURE"
	ErrCodeMalformedData       = "MALFORMED_DATA"
	ErrCodeTooManyImages       = "TOO_MANY_IMAGES"
	ErrCodeInternalError       = "INTERNAL_ERROR"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeUnsupportedMimeType = "UNSUPPORTED_MEDIA_TYPE"
)

// ErrorKind groups domain errors by how callers are expected to react to them.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindRemote
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRemote:
		return "remote"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Domain errors for business logic
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so wrapped copies still compare equal to
// the sentinels below.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new validation-kind domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

// NewRemoteFailure wraps an error coming back from the database or another backend.
func NewRemoteFailure(message string, err error) *DomainError {
	return &DomainError{
		Kind:    KindRemote,
		Code:    ErrCodeRemoteFailure,
		Message: message,
		Err:     err,
	}
}

// NewMalformedData reports an unparseable payload.
func NewMalformedData(message string, err error) *DomainError {
	return &DomainError{
		Kind:    KindMalformed,
		Code:    ErrCodeMalformedData,
		Message: message,
		Err:     err,
	}
}

// NewMissingField reports a required field that was left empty.
func NewMissingField(message string) *DomainError {
	return NewDomainError(ErrCodeMissingField, message)
}

func newKindError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// Common domain errors
var (
	ErrCartEmpty          = NewDomainError(ErrCodeCartEmpty, "Cart is empty, add items before paying")
	ErrInvalidCartIndex   = NewDomainError(ErrCodeInvalidCartIndex, "Cart index is out of range")
	ErrItemUnavailable    = NewDomainError(ErrCodeItemUnavailable, "Menu item is unavailable today")
	ErrWeakPassword       = NewDomainError(ErrCodeWeakPassword, "Password must be at least 6 characters")
	ErrTooManyImages      = NewDomainError(ErrCodeTooManyImages, "An announcement holds at most 4 images")
	ErrUnsupportedImage   = NewDomainError(ErrCodeUnsupportedMimeType, "Images must be JPEG, PNG, WebP, GIF or HEIC")
	ErrCheckoutInProgress = newKindError(KindConflict, ErrCodeCheckoutInProgress, "A payment is already being processed")
	ErrEmailTaken         = newKindError(KindConflict, ErrCodeEmailTaken, "Email is already registered")
	ErrUnauthenticated    = newKindError(KindUnauthenticated, ErrCodeUnauthenticated, "User is not authenticated")
	ErrInvalidCredentials = newKindError(KindUnauthenticated, ErrCodeInvalidCredentials, "Invalid email or password")
	ErrForbidden          = newKindError(KindForbidden, ErrCodeForbidden, "Only the chef can do this")
	ErrNotFound           = newKindError(KindNotFound, ErrCodeNotFound, "Resource not found")
	ErrMenuItemNotFound   = newKindError(KindNotFound, ErrCodeNotFound, "Menu item not found")
)

// KindOf reports the kind of a domain error, and false for anything else.
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
