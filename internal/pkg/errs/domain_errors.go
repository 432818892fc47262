package errs

import "errors"

// Sentinel errors shared across usecase layers
var (
	// Reservation errors
	ErrReservationNotFound = errors.New("reservation not found")

	// Notification job errors
	ErrJobNotFound     = errors.New("notification job not found")
	ErrJobNotClaimable = errors.New("notification job not claimable")
	ErrInvalidJobKind  = errors.New("invalid notification job kind")
	ErrInvalidPayload  = errors.New("invalid notification payload")

	// Validation errors
	ErrDomainValidation = errors.New("domain validation error")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
