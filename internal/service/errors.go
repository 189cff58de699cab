package service

import "errors"

// Errors returned by the services. Controllers map them to status codes and
// user-facing messages with errors.Is.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrTutorNotFound        = errors.New("tutor not found")
	ErrChildNotFound        = errors.New("child not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrDBSNotFound          = errors.New("dbs record not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrNotParty        = errors.New("user is not a party to this booking")
	ErrNotOwner        = errors.New("user does not own this resource")
	ErrForbiddenAction = errors.New("action not allowed for this role")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
	ErrAlreadyReviewed   = errors.New("booking already reviewed")
	ErrChildHasBookings  = errors.New("child has bookings")
	ErrBookingReviewed   = errors.New("booking has a review")
	ErrInvalidLinkCode   = errors.New("invalid or used link code")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")

	ErrUndeliverable = errors.New("chat cannot receive messages")
)
