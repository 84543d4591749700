package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotClubMember      = errors.New("user is not a member of this club")
	ErrEventInvalidDates  = errors.New("event end time must be after start time")

	// Conflicts
	ErrUserEmailConflict = errors.New("email address is already in use")
	ErrClubNameConflict  = errors.New("club name is already in use")
	ErrAlreadyClubMember = errors.New("user already belongs to a club")

	// Authentication and authorization
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrAccountBanned      = errors.New("account is banned")
	ErrInvalidResetToken  = errors.New("invalid or expired token")

	// Entity-specific not-found variants
	ErrUserNotFound     = errors.New("user not found")
	ErrClubNotFound     = errors.New("club not found")
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrLocationNotFound = errors.New("location not found")
	ErrNewsPostNotFound = errors.New("news post not found")

	// Upstream failures
	ErrImageUploadFailed = errors.New("image upload failed")
)
