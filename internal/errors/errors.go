package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when signing up with a taken email.
	ErrUserAlreadyExists = errors.New("an account with this email already exists")
	// ErrInvalidCredentials is returned when email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotVerified is returned when logging in before OTP verification.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrInvalidRefreshToken is returned when a refresh token is expired, revoked, or malformed.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrPictureTooLarge is returned when an uploaded profile picture exceeds the size cap.
	ErrPictureTooLarge = errors.New("profile picture exceeds 5MB limit")
	// ErrInvalidImage is returned when an uploaded profile picture is not an image.
	ErrInvalidImage = errors.New("profile picture must be an image")
	// ErrInvalidOTP is returned when a verification code is wrong, used, or expired.
	ErrInvalidOTP = errors.New("invalid or expired verification code")
	// ErrInvalidPreference is returned when a preferences payload carries an unknown enum value.
	ErrInvalidPreference = errors.New("invalid preference value")
	// ErrUnknownSymbol is returned when a trade references a symbol outside the catalog.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrInvalidQuantity is returned when a trade quantity is below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInsufficientCash is returned when a buy exceeds available cash.
	ErrInsufficientCash = errors.New("insufficient cash")
	// ErrInsufficientShares is returned when a sell exceeds owned shares.
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrActiveSession is returned when opening a position while one is already open.
	ErrActiveSession = errors.New("a simulation is already running")
	// ErrNoActiveSession is returned when closing or inspecting a position that does not exist.
	ErrNoActiveSession = errors.New("no active simulation")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrUserNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case ErrUserAlreadyExists:
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_EXISTS")
	case ErrInvalidCredentials:
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case ErrEmailNotVerified:
		return NewHTTPError(http.StatusForbidden, err.Error(), "EMAIL_NOT_VERIFIED")
	case ErrInvalidRefreshToken:
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case ErrPictureTooLarge:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PICTURE_TOO_LARGE")
	case ErrInvalidImage:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_IMAGE")
	case ErrInvalidOTP:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_OTP")
	case ErrInvalidPreference:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_PREFERENCE")
	case ErrUnknownSymbol:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "UNKNOWN_SYMBOL")
	case ErrInvalidQuantity:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_QUANTITY")
	case ErrInsufficientCash:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INSUFFICIENT_CASH")
	case ErrInsufficientShares:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INSUFFICIENT_SHARES")
	case ErrActiveSession:
		return NewHTTPError(http.StatusConflict, err.Error(), "SESSION_ACTIVE")
	case ErrNoActiveSession:
		return NewHTTPError(http.StatusNotFound, err.Error(), "NO_SESSION")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
